package docconv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Request is one rendered transcript to turn into a downloadable
// document.
type Request struct {
	SessionID string
	Format    string // txt | srt | docx
	Content   string
}

// Converter is the external document-conversion collaborator. It
// returns a stable reference the viewer can download.
type Converter interface {
	Convert(ctx context.Context, req Request) (string, error)
}

// LocalConverter writes the rendered document under a directory served
// as /downloads and returns the matching URL. The docx format is
// delegated to a hosted converter in real deployments; locally it is
// written as plain text with a .docx.txt suffix so exports never fail
// outright.
type LocalConverter struct {
	Dir     string
	BaseURL string
}

func NewLocalConverter(dir, baseURL string) *LocalConverter {
	return &LocalConverter{Dir: dir, BaseURL: baseURL}
}

func (l *LocalConverter) Convert(ctx context.Context, req Request) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	name := fmt.Sprintf("%s.%s", req.SessionID, req.Format)
	if req.Format == "docx" {
		name = fmt.Sprintf("%s.docx.txt", req.SessionID)
	}
	path := filepath.Join(l.Dir, name)
	if err := os.WriteFile(path, []byte(req.Content), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return fmt.Sprintf("%s/downloads/%s", l.BaseURL, name), nil
}
