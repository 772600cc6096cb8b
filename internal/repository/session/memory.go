package session

import (
	"context"
	"sync"

	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/google/uuid"
)

// MemoryBatchRepo keeps everything in process memory. Used by tests
// and by deployments that run without MySQL/redis.
type MemoryBatchRepo struct {
	mu      sync.RWMutex
	batches map[uuid.UUID][]types.ConfirmedBatch
	live    map[uuid.UUID]string
}

func NewMemoryBatchRepo() *MemoryBatchRepo {
	return &MemoryBatchRepo{
		batches: make(map[uuid.UUID][]types.ConfirmedBatch),
		live:    make(map[uuid.UUID]string),
	}
}

// SaveBatch implements session.BatchRepository.
func (m *MemoryBatchRepo) SaveBatch(ctx context.Context, sessionID uuid.UUID, b types.ConfirmedBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[sessionID] = append(m.batches[sessionID], b)
	return nil
}

// RecentBatches implements session.BatchRepository.
func (m *MemoryBatchRepo) RecentBatches(ctx context.Context, sessionID uuid.UUID, limit int64) ([]types.ConfirmedBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.batches[sessionID]
	start := 0
	if int64(len(all)) > limit {
		start = len(all) - int(limit)
	}
	out := make([]types.ConfirmedBatch, len(all)-start)
	copy(out, all[start:])
	return out, nil
}

// SaveLiveBuffer implements session.BatchRepository.
func (m *MemoryBatchRepo) SaveLiveBuffer(ctx context.Context, sessionID uuid.UUID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[sessionID] = text
	return nil
}

var _ session.BatchRepository = (*MemoryBatchRepo)(nil)
