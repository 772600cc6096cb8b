package asr

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIRecognizer uses the hosted OpenAI transcription API. The plain
// json response format carries no segment timing, so the whole chunk is
// reported as a single segment spanning its estimated duration.
type OpenAIRecognizer struct {
	client openai.Client
	model  openai.AudioModel
}

func NewOpenAIRecognizer(apiKey, model string) *OpenAIRecognizer {
	m := openai.AudioModel(model)
	if model == "" {
		m = openai.AudioModelWhisper1
	}
	return &OpenAIRecognizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  m,
	}
}

func (o *OpenAIRecognizer) Transcribe(ctx context.Context, audio []byte) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("no audio provided")
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: o.model,
		File:  openai.File(bytes.NewReader(audio), "chunk.wav", "audio/wav"),
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription failed: %w", err)
	}

	t := &Transcription{
		Text:        resp.Text,
		Language:    "en",
		GeneratedAt: time.Now(),
	}
	if dur := wavDuration(audio); dur > 0 && !t.Empty() {
		t.Segments = []Segment{{Start: 0, End: dur, Text: resp.Text}}
	}
	return t, nil
}

// wavDuration estimates play time from a canonical RIFF/WAVE header.
// Returns 0 for anything it cannot parse.
func wavDuration(b []byte) float64 {
	if len(b) < 44 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return 0
	}
	byteRate := binary.LittleEndian.Uint32(b[28:32])
	dataLen := len(b) - 44
	if byteRate == 0 || dataLen <= 0 {
		return 0
	}
	return float64(dataLen) / float64(byteRate)
}
