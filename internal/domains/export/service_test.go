package export_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/captionrelay/captionrelay/internal/domains/export"
	"github.com/captionrelay/captionrelay/internal/domains/session"
	sessionrepo "github.com/captionrelay/captionrelay/internal/repository/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/captionrelay/captionrelay/pkg/docconv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConverter captures every conversion request.
type recordingConverter struct {
	mu   sync.Mutex
	reqs []docconv.Request
}

func (r *recordingConverter) Convert(ctx context.Context, req docconv.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return fmt.Sprintf("http://localhost/downloads/%s-%d.%s", req.SessionID, len(r.reqs), req.Format), nil
}

func newExportFixture(t *testing.T) (session.SessionService, *recordingConverter, *export.Service, uuid.UUID) {
	t.Helper()
	logger := Logger.Noop()
	sessions := session.New(sessionrepo.NewMemoryBatchRepo(), logger)
	conv := &recordingConverter{}
	svc := export.New(sessions, conv, logger)

	id, err := sessions.Start(context.Background())
	require.NoError(t, err)
	_, err = sessions.AppendBatch(context.Background(), id, types.Window{T0: 0, T1: 12}, "Hello.", "안녕하세요.")
	require.NoError(t, err)
	return sessions, conv, svc, id
}

func TestExportFormats(t *testing.T) {
	_, conv, svc, id := newExportFixture(t)
	ctx := context.Background()

	url, err := svc.Export(ctx, id, "txt")
	require.NoError(t, err)
	assert.Contains(t, url, ".txt")

	_, err = svc.Export(ctx, id, "srt")
	require.NoError(t, err)
	_, err = svc.Export(ctx, id, "docx")
	require.NoError(t, err)

	require.Len(t, conv.reqs, 3)
	assert.Contains(t, conv.reqs[0].Content, "EN: Hello.")
	assert.Contains(t, conv.reqs[1].Content, "00:00:00,000 --> 00:00:12,000")
	assert.Equal(t, "docx", conv.reqs[2].Format)
}

func TestExportDefaultsToTXT(t *testing.T) {
	_, conv, svc, id := newExportFixture(t)
	_, err := svc.Export(context.Background(), id, "")
	require.NoError(t, err)
	require.Len(t, conv.reqs, 1)
	assert.Equal(t, "txt", conv.reqs[0].Format)
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, conv, svc, id := newExportFixture(t)
	_, err := svc.Export(context.Background(), id, "pdf")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
	assert.Empty(t, conv.reqs, "converter is never called for bad formats")
}

func TestExportUnknownSession(t *testing.T) {
	_, _, svc, _ := newExportFixture(t)
	_, err := svc.Export(context.Background(), uuid.New(), "txt")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestExportContentDeterministic(t *testing.T) {
	// Exporting an unchanged log twice yields identical content even
	// if the returned reference differs.
	_, conv, svc, id := newExportFixture(t)
	ctx := context.Background()

	_, err := svc.Export(ctx, id, "txt")
	require.NoError(t, err)
	_, err = svc.Export(ctx, id, "txt")
	require.NoError(t, err)

	require.Len(t, conv.reqs, 2)
	assert.Equal(t, conv.reqs[0].Content, conv.reqs[1].Content)
}
