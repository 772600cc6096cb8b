package asr

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrUnusableAudio marks content the engine decoded but could not
	// use (silence, noise-only). Callers treat this as a skip, not a
	// failure.
	ErrUnusableAudio = errors.New("unusable audio content")
)

// Segment is a timed span of recognized speech, local to the chunk.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the result of recognizing one audio chunk.
type Transcription struct {
	Text        string    `json:"text"`
	Language    string    `json:"language,omitempty"`
	Segments    []Segment `json:"segments,omitempty"`
	GeneratedAt time.Time `json:"-"`
}

// Empty reports whether the engine heard nothing worth keeping.
func (t *Transcription) Empty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// Bounds returns the first segment start and last segment end, or
// (0, 0) when the engine returned no timing info.
func (t *Transcription) Bounds() (float64, float64) {
	if len(t.Segments) == 0 {
		return 0, 0
	}
	return t.Segments[0].Start, t.Segments[len(t.Segments)-1].End
}

// Recognizer converts one self-contained audio chunk into text. The
// chunk must carry its own container header.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte) (*Transcription, error)
}
