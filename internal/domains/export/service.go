package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/captionrelay/captionrelay/pkg/docconv"
	"github.com/google/uuid"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Service snapshots a session's confirmed transcript and hands it to
// the document-conversion collaborator. Export of an unchanged log is
// deterministic in content; the returned reference may be freshly
// generated each call.
type Service struct {
	sessions  session.SessionService
	converter docconv.Converter
	logger    *Logger.Logger
}

func New(sessions session.SessionService, converter docconv.Converter, logger *Logger.Logger) *Service {
	return &Service{sessions: sessions, converter: converter, logger: logger}
}

func (s *Service) Export(ctx context.Context, id uuid.UUID, format string) (string, error) {
	snap, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return "", err
	}

	var content string
	switch format {
	case "", "txt":
		format = "txt"
		content = RenderTXT(snap.Batches)
	case "srt":
		content = RenderSRT(snap.Batches)
	case "docx":
		// The converter owns the docx rendering; we hand it the text
		// form.
		content = RenderTXT(snap.Batches)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	url, err := s.converter.Convert(ctx, docconv.Request{
		SessionID: id.String(),
		Format:    format,
		Content:   content,
	})
	if err != nil {
		return "", fmt.Errorf("document conversion failed: %w", err)
	}
	s.logger.Infof("session %s exported as %s", id, format)
	return url, nil
}
