package capture

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays a fixed PCM stream in small frames.
type scriptedSource struct {
	frames []Frame
	pos    int
}

func (s *scriptedSource) ReadFrame(ctx context.Context) (Frame, error) {
	if s.pos >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func pcmFrames(total, frameSize int) []Frame {
	var frames []Frame
	for off := 0; off < total; off += frameSize {
		n := frameSize
		if off+n > total {
			n = total - off
		}
		data := make([]byte, n)
		for i := range data {
			data[i] = byte((off + i) % 256)
		}
		frames = append(frames, Frame{Data: data, SampleRate: 16000, Channels: 1})
	}
	return frames
}

func TestRecorderCutsSerialSegments(t *testing.T) {
	// 1 second of 16kHz mono 16-bit is 32000 bytes. 2.5 seconds total
	// at a 1s segment interval should yield 2 full segments plus a
	// half-size trailing one.
	src := &scriptedSource{frames: pcmFrames(80000, 3000)}
	rec := NewRecorder(src, time.Second, Logger.Noop())

	var segs []Segment
	err := rec.Run(context.Background(), func(s Segment) { segs = append(segs, s) })
	require.NoError(t, err)
	require.Len(t, segs, 3)

	var totalPCM []byte
	for i, seg := range segs {
		rate, channels, pcm, perr := ParseWAV(seg.WAV)
		require.NoError(t, perr, "segment %d", i)
		assert.Equal(t, 16000, rate)
		assert.Equal(t, 1, channels)
		totalPCM = append(totalPCM, pcm...)
	}

	// Segments never overlap and never lose bytes: concatenating them
	// reproduces the source stream exactly.
	assert.Len(t, totalPCM, 80000)
	for i, b := range totalPCM {
		if b != byte(i%256) {
			t.Fatalf("byte %d: got %d want %d", i, b, byte(i%256))
		}
	}

	assert.InDelta(t, 1.0, segs[0].Duration, 0.001)
	assert.InDelta(t, 1.0, segs[1].Duration, 0.001)
	assert.InDelta(t, 0.5, segs[2].Duration, 0.001)
}

func TestRecorderEmitsNothingForEmptySource(t *testing.T) {
	src := &scriptedSource{}
	rec := NewRecorder(src, time.Second, Logger.Noop())

	calls := 0
	err := rec.Run(context.Background(), func(Segment) { calls++ })
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestRecorderFlushesPartialOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	frames := pcmFrames(8000, 8000) // half a segment
	src := &cancellingSource{inner: &scriptedSource{frames: frames}, cancel: cancel}
	rec := NewRecorder(src, time.Second, Logger.Noop())

	var segs []Segment
	err := rec.Run(ctx, func(s Segment) { segs = append(segs, s) })
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.InDelta(t, 0.25, segs[0].Duration, 0.001)
}

// cancellingSource cancels the context once its inner source drains,
// simulating teardown mid-segment.
type cancellingSource struct {
	inner  *scriptedSource
	cancel context.CancelFunc
}

func (s *cancellingSource) ReadFrame(ctx context.Context) (Frame, error) {
	f, err := s.inner.ReadFrame(ctx)
	if err != nil {
		s.cancel()
		return Frame{}, context.Canceled
	}
	return f, nil
}
