package capture

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/smallnest/ringbuffer"
)

// Frame is one burst of raw PCM from the capture device.
type Frame struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Source abstracts the capture device. ReadFrame returns io.EOF when
// the stream ends; any other error is a session-level capture failure.
type Source interface {
	ReadFrame(ctx context.Context) (Frame, error)
}

// Segment is one complete, self-contained audio segment ready for
// upload.
type Segment struct {
	WAV        []byte
	Duration   float64
	CapturedAt time.Time
}

// Recorder cuts the source's PCM stream into fixed-interval segments.
// Capture is strictly serial: one segment is finalized, header and
// all, before the next begins; segments never overlap in time.
type Recorder struct {
	src      Source
	interval time.Duration
	logger   *Logger.Logger
}

func NewRecorder(src Source, interval time.Duration, logger *Logger.Logger) *Recorder {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Recorder{src: src, interval: interval, logger: logger}
}

// Run reads frames until the source ends or ctx is cancelled, calling
// emit once per finished segment. emit must not block for long;
// uploads belong to the coordinator, not the capture loop. A partial
// trailing segment is emitted on teardown so the last words are not
// silently dropped.
func (r *Recorder) Run(ctx context.Context, emit func(Segment)) error {
	var (
		rb           *ringbuffer.RingBuffer
		sampleRate   int
		channels     int
		segmentBytes int
		segStart     = time.Now()
	)

	flushPartial := func() {
		if rb == nil || rb.Length() == 0 {
			return
		}
		pcm := make([]byte, rb.Length())
		rb.Read(pcm)
		emit(Segment{
			WAV:        BuildWAV(sampleRate, channels, pcm),
			Duration:   pcmDuration(len(pcm), sampleRate, channels),
			CapturedAt: segStart,
		})
	}

	for {
		if ctx.Err() != nil {
			flushPartial()
			return nil
		}

		frame, err := r.src.ReadFrame(ctx)
		if errors.Is(err, io.EOF) {
			flushPartial()
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			flushPartial()
			return nil
		}
		if err != nil {
			// Capture device loss is fatal for the session; restart is
			// the caller's decision.
			return err
		}
		if len(frame.Data) == 0 {
			continue
		}

		if rb == nil {
			sampleRate = frame.SampleRate
			channels = frame.Channels
			segmentBytes = int(r.interval.Seconds() * float64(sampleRate*channels*2))
			rb = ringbuffer.New(segmentBytes * 8)
		}

		if _, err := rb.Write(frame.Data); err != nil {
			r.logger.Warnf("capture buffer full, dropping %d bytes", len(frame.Data))
			continue
		}

		for rb.Length() >= segmentBytes {
			pcm := make([]byte, segmentBytes)
			rb.Read(pcm)
			emit(Segment{
				WAV:        BuildWAV(sampleRate, channels, pcm),
				Duration:   r.interval.Seconds(),
				CapturedAt: segStart,
			})
			segStart = time.Now()
		}
	}
}

func pcmDuration(n, sampleRate, channels int) float64 {
	if sampleRate == 0 || channels == 0 {
		return 0
	}
	return float64(n) / float64(sampleRate*channels*2)
}
