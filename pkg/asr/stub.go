package asr

import (
	"context"
	"sync"
	"time"
)

// StubRecognizer returns scripted transcriptions in order, for tests.
// When the script runs out it repeats the last entry.
type StubRecognizer struct {
	mu      sync.Mutex
	Results []StubResult
	calls   int
}

type StubResult struct {
	Transcription *Transcription
	Err           error
}

func (s *StubRecognizer) Transcribe(ctx context.Context, audio []byte) (*Transcription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Results) == 0 {
		return &Transcription{GeneratedAt: time.Now()}, nil
	}
	i := s.calls
	if i >= len(s.Results) {
		i = len(s.Results) - 1
	}
	s.calls++
	r := s.Results[i]
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Transcription, nil
}

// Calls reports how many chunks were submitted.
func (s *StubRecognizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
