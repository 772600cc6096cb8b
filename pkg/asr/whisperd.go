package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/captionrelay/captionrelay/pkg/Logger"
)

// WhisperdClient talks to a self-hosted whisper ASR service over HTTP
// multipart. The service returns verbose JSON with per-segment timing.
type WhisperdClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *Logger.Logger
}

func NewWhisperdClient(baseURL string, logger *Logger.Logger) *WhisperdClient {
	return &WhisperdClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Transcribe sends one self-contained audio chunk and returns the
// recognized text with segment timing.
func (w *WhisperdClient) Transcribe(ctx context.Context, audio []byte) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("no audio provided")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio_file", "chunk.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	requestURL := fmt.Sprintf("%s/asr?encode=true&task=transcribe&language=en&output=json", w.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		// The service decoded the chunk but found nothing usable.
		return nil, ErrUnusableAudio
	}
	if resp.StatusCode != http.StatusOK {
		w.logger.Errorf("whisperd error (status %d): %s", resp.StatusCode, string(responseBody))
		return nil, fmt.Errorf("whisperd returned status %d", resp.StatusCode)
	}

	var transcription Transcription
	if err := json.Unmarshal(responseBody, &transcription); err != nil {
		// Some deployments answer plain text for the json output mode.
		if text := string(responseBody); text != "" {
			return &Transcription{
				Text:        text,
				Language:    "en",
				GeneratedAt: time.Now(),
			}, nil
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	transcription.GeneratedAt = time.Now()
	w.logger.Debugf("whisperd transcription: %q (language: %s)", transcription.Text, transcription.Language)
	return &transcription, nil
}
