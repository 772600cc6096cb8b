package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepo persists confirmed batches in MySQL and keeps a hot
// window of recent ones, plus the live buffer, in redis.
type GormBatchRepo struct {
	db       *gorm.DB
	rc       *redis.Client
	batchTTL time.Duration
}

func NewGormBatchRepo(db *gorm.DB, rc *redis.Client, batchTTL time.Duration) session.BatchRepository {
	return &GormBatchRepo{db: db, rc: rc, batchTTL: batchTTL}
}

// SaveBatch implements session.BatchRepository.
func (g *GormBatchRepo) SaveBatch(ctx context.Context, sessionID uuid.UUID, b types.ConfirmedBatch) error {
	be := &BatchEntity{}
	be.FromDomain(sessionID, b)
	if err := g.db.WithContext(ctx).Create(be).Error; err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}

	if g.rc != nil {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("can't marshal batch")
		}
		if err := g.rc.ZAdd(sessionBatchKey(sessionID), redis.Z{
			Member: string(data),
			Score:  float64(b.SequenceIndex),
		}).Err(); err != nil {
			return fmt.Errorf("cache batch: %w", err)
		}
		g.rc.Expire(sessionBatchKey(sessionID), g.batchTTL)
	}
	return nil
}

// RecentBatches implements session.BatchRepository. Prefers the redis
// hot window, falling back to the durable store.
func (g *GormBatchRepo) RecentBatches(ctx context.Context, sessionID uuid.UUID, limit int64) ([]types.ConfirmedBatch, error) {
	if g.rc != nil {
		raw, err := g.rc.ZRange(sessionBatchKey(sessionID), -limit, -1).Result()
		if err == nil && len(raw) > 0 {
			batches := make([]types.ConfirmedBatch, 0, len(raw))
			for _, item := range raw {
				var b types.ConfirmedBatch
				if err := json.Unmarshal([]byte(item), &b); err != nil {
					continue
				}
				batches = append(batches, b)
			}
			return batches, nil
		}
	}

	var entities []BatchEntity
	err := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sequence_index DESC").
		Limit(int(limit)).
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("fetch batches: %w", err)
	}
	// Flip back to arrival order.
	batches := make([]types.ConfirmedBatch, len(entities))
	for i, e := range entities {
		batches[len(entities)-1-i] = e.ToDomain()
	}
	return batches, nil
}

// SaveLiveBuffer implements session.BatchRepository. Live text is
// ephemeral; it only ever lives in redis.
func (g *GormBatchRepo) SaveLiveBuffer(ctx context.Context, sessionID uuid.UUID, text string) error {
	if g.rc == nil {
		return nil
	}
	return g.rc.Set(liveBufferKey(sessionID), text, g.batchTTL).Err()
}
