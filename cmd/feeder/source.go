package main

import (
	"context"
	"io"
	"time"

	"github.com/captionrelay/captionrelay/pkg/capture"
)

// fileSource replays a parsed WAV file as capture frames. In realtime
// mode each frame is paced to its recorded duration so the relay sees
// something close to a live microphone.
type fileSource struct {
	pcm        []byte
	sampleRate int
	channels   int
	frameBytes int
	pos        int
	realtime   bool
}

func newFileSource(wav []byte, realtime bool) (*fileSource, error) {
	sampleRate, channels, pcm, err := capture.ParseWAV(wav)
	if err != nil {
		return nil, err
	}
	// 100ms frames, aligned to whole samples
	frameBytes := sampleRate * channels * 2 / 10
	frameBytes -= frameBytes % (channels * 2)
	return &fileSource{
		pcm:        pcm,
		sampleRate: sampleRate,
		channels:   channels,
		frameBytes: frameBytes,
		realtime:   realtime,
	}, nil
}

func (s *fileSource) ReadFrame(ctx context.Context) (capture.Frame, error) {
	if s.pos >= len(s.pcm) {
		return capture.Frame{}, io.EOF
	}
	end := s.pos + s.frameBytes
	if end > len(s.pcm) {
		end = len(s.pcm)
	}
	data := s.pcm[s.pos:end]
	s.pos = end

	if s.realtime {
		wait := time.Duration(float64(len(data)) / float64(s.sampleRate*s.channels*2) * float64(time.Second))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return capture.Frame{}, ctx.Err()
		}
	}
	return capture.Frame{Data: data, SampleRate: s.sampleRate, Channels: s.channels}, nil
}
