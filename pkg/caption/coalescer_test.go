package caption

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *lineSink) emit(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
}

func (s *lineSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *lineSink) waitFor(t *testing.T, n int, within time.Duration) []string {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if got := s.all(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("wanted %d emits, got %v", n, s.all())
	return nil
}

func TestCoalescerDebouncesSmallFragments(t *testing.T) {
	sink := &lineSink{}
	c := NewCoalescer(sink.emit)
	c.Debounce = 50 * time.Millisecond
	defer c.Stop()

	c.AddFragment("Hello")
	c.AddFragment("there")
	c.AddFragment("friend")

	// No synchronous emit for small fragments.
	assert.Empty(t, sink.all())

	got := sink.waitFor(t, 1, time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, "Hello there friend", got[0])
}

func TestCoalescerFlushesLongLineImmediately(t *testing.T) {
	sink := &lineSink{}
	c := NewCoalescer(sink.emit)
	defer c.Stop()

	long := strings.Repeat("word ", 18) // ~90 chars
	c.AddFragment(long)

	got := sink.all()
	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, len(got[0]), c.MinChars)
}

func TestCoalescerMaxAgeForcesFlush(t *testing.T) {
	sink := &lineSink{}
	c := NewCoalescer(sink.emit)
	c.MaxAge = 30 * time.Millisecond
	c.Debounce = time.Hour // debounce alone would withhold forever
	defer c.Stop()

	c.AddFragment("first")
	time.Sleep(50 * time.Millisecond)
	c.AddFragment("second")

	got := sink.all()
	require.Len(t, got, 1)
	assert.Equal(t, "first second", got[0])
}

func TestCoalescerConfirmResetsLiveLine(t *testing.T) {
	sink := &lineSink{}
	c := NewCoalescer(sink.emit)
	c.Debounce = 50 * time.Millisecond
	defer c.Stop()

	c.AddFragment("pending text")
	c.Confirm()

	// Confirm emits the empty reset line and drops the pending flush.
	got := sink.all()
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0])

	time.Sleep(120 * time.Millisecond)
	assert.Len(t, sink.all(), 1, "cancelled debounce must not fire")
}

func TestCoalescerNormalizesWhitespace(t *testing.T) {
	sink := &lineSink{}
	c := NewCoalescer(sink.emit)
	c.MinChars = 5
	defer c.Stop()

	c.AddFragment("  a \t lot   of\ngaps  ")
	got := sink.all()
	require.Len(t, got, 1)
	assert.Equal(t, "a lot of gaps", got[0])
}

func TestCoalescerEmitCallbackMayReenter(t *testing.T) {
	sink := &lineSink{}
	var c *Coalescer
	// the callback calls back into the coalescer; emit must therefore
	// run without the mutex held
	c = NewCoalescer(func(line string) {
		sink.emit(line)
		if line != "" {
			c.Confirm()
		}
	})
	c.MinChars = 5

	done := make(chan struct{})
	go func() {
		c.AddFragment("a long enough line")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("re-entrant emit callback blocked")
	}

	got := sink.all()
	require.Len(t, got, 2)
	assert.Equal(t, "a long enough line", got[0])
	assert.Equal(t, "", got[1])
}

func TestCoalescerTimerEmitRunsUnlocked(t *testing.T) {
	sink := &lineSink{}
	var c *Coalescer
	c = NewCoalescer(func(line string) {
		sink.emit(line)
		c.Stop()
	})
	c.Debounce = 20 * time.Millisecond
	defer c.Stop()

	c.AddFragment("tiny")
	got := sink.waitFor(t, 1, time.Second)
	assert.Equal(t, "tiny", got[0])
}
