package session

import (
	"fmt"
	"time"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/google/uuid"
)

// BatchEntity is the durable row for one confirmed batch.
type BatchEntity struct {
	ID            uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	SessionID     uuid.UUID `gorm:"column:session_id;type:char(36);not null;index"`
	SequenceIndex int       `gorm:"column:sequence_index;not null"`
	T0            float64   `gorm:"column:t0"`
	T1            float64   `gorm:"column:t1"`
	TextEN        string    `gorm:"column:text_en;type:text"`
	TextKO        string    `gorm:"column:text_ko;type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime(3)"`
}

func (be *BatchEntity) FromDomain(sessionID uuid.UUID, b types.ConfirmedBatch) {
	be.ID = uuid.New()
	be.SessionID = sessionID
	be.SequenceIndex = b.SequenceIndex
	be.T0 = b.T0
	be.T1 = b.T1
	be.TextEN = b.TextEN
	be.TextKO = b.TextKO
}

func (be *BatchEntity) ToDomain() types.ConfirmedBatch {
	return types.ConfirmedBatch{
		T0:            be.T0,
		T1:            be.T1,
		TextEN:        be.TextEN,
		TextKO:        be.TextKO,
		SequenceIndex: be.SequenceIndex,
	}
}

func sessionBatchKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s:batches", sessionID.String())
}

func liveBufferKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s:live", sessionID.String())
}
