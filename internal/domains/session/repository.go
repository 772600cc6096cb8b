package session

import (
	"context"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/google/uuid"
)

// BatchRepository is the durable side of the confirmed-batch log. The
// controller's in-memory log stays authoritative for the running
// process; the repository exists so confirmed content survives it.
type BatchRepository interface {
	SaveBatch(ctx context.Context, sessionID uuid.UUID, b types.ConfirmedBatch) error
	RecentBatches(ctx context.Context, sessionID uuid.UUID, limit int64) ([]types.ConfirmedBatch, error)
	SaveLiveBuffer(ctx context.Context, sessionID uuid.UUID, text string) error
}
