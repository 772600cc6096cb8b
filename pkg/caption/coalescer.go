package caption

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	defaultMinChars = 80
	defaultMaxAge   = 2500 * time.Millisecond
	defaultDebounce = 600 * time.Millisecond
)

var spaceRe = regexp.MustCompile(`\s+`)

// Coalescer merges a bursty stream of provisional fragments into a
// stable live line. Flush fires immediately when the joined text
// reaches the length threshold or the buffer exceeds its max age;
// otherwise a single-slot debounce timer is (re)armed. This is a
// debounce with a forced-flush ceiling, not a pure debounce, so a long
// silence after speech cannot withhold a near-complete line forever.
type Coalescer struct {
	MinChars int
	MaxAge   time.Duration
	Debounce time.Duration

	emit func(line string)

	mu        sync.Mutex
	parts     []string
	timer     *time.Timer
	lastFlush time.Time
}

// NewCoalescer builds a coalescer with the default thresholds. emit
// receives the current live line; an empty line means "clear".
func NewCoalescer(emit func(line string)) *Coalescer {
	return &Coalescer{
		MinChars:  defaultMinChars,
		MaxAge:    defaultMaxAge,
		Debounce:  defaultDebounce,
		emit:      emit,
		lastFlush: time.Now(),
	}
}

// AddFragment feeds one provisional fragment.
func (c *Coalescer) AddFragment(text string) {
	c.mu.Lock()
	c.parts = append(c.parts, text)
	joined := c.joinedLocked()

	if len(joined) >= c.MinChars || time.Since(c.lastFlush) > c.MaxAge {
		c.resetLocked()
		c.mu.Unlock()
		c.emit(joined)
		return
	}

	// Single-slot timer: a new fragment cancels and reschedules the
	// pending flush, never queues a second one.
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.Debounce, c.timerFlush)
	c.mu.Unlock()
}

// Confirm handles the arrival of a confirmed batch: the window it
// covers is durable now, so the buffer and any pending flush are
// discarded and the live line resets to empty.
func (c *Coalescer) Confirm() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	c.emit("")
}

// Stop cancels any pending flush without emitting.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	c.stopTimerLocked()
	c.mu.Unlock()
}

func (c *Coalescer) timerFlush() {
	c.mu.Lock()
	if len(c.parts) == 0 {
		c.mu.Unlock()
		return
	}
	joined := c.joinedLocked()
	c.resetLocked()
	c.mu.Unlock()
	c.emit(joined)
}

// resetLocked clears the buffer and any pending timer slot. Caller
// holds c.mu; emit always happens after the lock is released so the
// callback is free to call back into the coalescer.
func (c *Coalescer) resetLocked() {
	c.stopTimerLocked()
	c.parts = nil
	c.lastFlush = time.Now()
}

func (c *Coalescer) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coalescer) joinedLocked() string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.Join(c.parts, " "), " "))
}
