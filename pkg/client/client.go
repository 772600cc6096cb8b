package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/uploader"
)

// APIError is any non-2xx answer from the relay. Reason carries the
// server's JSON reason/message when one was parseable; otherwise the
// failure is keyed on status code alone.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Client talks to the caption relay HTTP surface.
type Client struct {
	base string
	http *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Start creates a session and returns its id.
func (c *Client) Start(ctx context.Context) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.postJSON(ctx, "/sessions", &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

func (c *Client) Pause(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/sessions/"+id+"/pause", nil)
}

func (c *Client) Resume(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/sessions/"+id+"/resume", nil)
}

func (c *Client) Complete(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/sessions/"+id+"/complete", nil)
}

// SubmitChunk uploads one self-contained segment. 204 means skipped.
func (c *Client) SubmitChunk(ctx context.Context, id string, wav []byte) (uploader.ChunkStatus, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("chunk", "segment.wav")
	if err != nil {
		return 0, err
	}
	if _, err := part.Write(wav); err != nil {
		return 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.base+"/sessions/"+id+"/chunks", &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return uploader.ChunkSkipped, nil
	case resp.StatusCode/100 == 2:
		return uploader.ChunkAccepted, nil
	default:
		return 0, apiError(resp)
	}
}

// Transcript fetches the confirmed transcript snapshot.
func (c *Client) Transcript(ctx context.Context, id string) (string, error) {
	var out struct {
		Transcript string `json:"transcript"`
	}
	if err := c.getJSON(ctx, "/sessions/"+id+"/transcript", &out); err != nil {
		return "", err
	}
	return out.Transcript, nil
}

// Export requests a document conversion and returns the download URL.
func (c *Client) Export(ctx context.Context, id, format string) (string, error) {
	var out struct {
		DownloadURL string `json:"download_url"`
	}
	path := "/sessions/" + id + "/export"
	if format != "" {
		path += "?format=" + format
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return "", err
	}
	return out.DownloadURL, nil
}

// Subscribe opens the SSE push stream and decodes named events until
// ctx ends or the server closes the stream.
func (c *Client) Subscribe(ctx context.Context, id string) (<-chan types.SessionEvent, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.base+"/sessions/"+id+"/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The push connection is long-lived; no client timeout.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}

	events := make(chan types.SessionEvent, 16)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

		var eventName string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
				var ev types.SessionEvent
				if err := json.Unmarshal([]byte(data), &ev); err != nil {
					continue
				}
				if eventName != "" {
					ev.Name = eventName
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			case line == "":
				eventName = ""
			}
		}
	}()
	return events, nil
}

func (c *Client) postJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError parses the reason/message/error field of a failure body;
// any non-2xx without a parseable JSON body becomes a bare status-code
// failure.
func apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}
	var parsed struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.Reason != "":
			apiErr.Reason = parsed.Reason
		case parsed.Message != "":
			apiErr.Reason = parsed.Message
		case parsed.Error != "":
			apiErr.Reason = parsed.Error
		}
	}
	return apiErr
}
