package types

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the single lifecycle authority for a recording session.
// Every component derives "can I do this" from the state, never from
// side flags.
type SessionState string

const (
	SessionRecording SessionState = "recording"
	SessionPaused    SessionState = "paused"
	SessionCompleted SessionState = "completed"
)

// Session is owned exclusively by the session controller; its id is the
// only external handle and is unique for the process lifetime.
type Session struct {
	ID             uuid.UUID        `json:"id"`
	State          SessionState     `json:"state"`
	CreatedAt      time.Time        `json:"createdAt"`
	LastActivityAt time.Time        `json:"lastActivityAt"`
	Batches        []ConfirmedBatch `json:"batches"`
	LiveBuffer     string           `json:"liveBuffer"`
}

// ConfirmedBatch is a finalized, immutable window of transcription plus
// translation. SequenceIndex equals arrival order of the confirmation,
// which is not necessarily monotonic in T0.
type ConfirmedBatch struct {
	T0            float64 `json:"t0"`
	T1            float64 `json:"t1"`
	TextEN        string  `json:"text_en"`
	TextKO        string  `json:"text_ko"`
	SequenceIndex int     `json:"sequenceIndex"`
}

// AudioSegment is one self-contained, independently decodable unit of
// captured audio. Consumed exactly once by ingestion, then discarded.
type AudioSegment struct {
	SessionID  uuid.UUID
	Bytes      []byte
	MimeHint   string
	CapturedAt time.Time
}
