package types

// Wire names of the push events. The viewer subscribes to exactly these
// two; provisional fragments are ephemeral, confirmed batches are durable.
const (
	EventENPartial = "en_partial"
	EventKOBatch   = "ko_batch"
)

// Window is the time span a confirmed batch covers, on the session's
// global timeline.
type Window struct {
	T0 float64 `json:"t0"`
	T1 float64 `json:"t1"`
}

// SessionEvent is the wire representation pushed to the subscriber.
// Name is one of EventENPartial / EventKOBatch; exactly one of the
// payload groups is populated.
type SessionEvent struct {
	Name string `json:"type"`

	// en_partial payload
	Seq    int     `json:"seq,omitempty"`
	T0     float64 `json:"t0,omitempty"`
	T1     float64 `json:"t1,omitempty"`
	TextEN string  `json:"text_en,omitempty"`

	// ko_batch payload
	Window *Window `json:"window,omitempty"`
	TextKO string  `json:"text_ko,omitempty"`
}

// PartialEvent builds an en_partial event.
func PartialEvent(seq int, t0, t1 float64, textEN string) SessionEvent {
	return SessionEvent{
		Name:   EventENPartial,
		Seq:    seq,
		T0:     t0,
		T1:     t1,
		TextEN: textEN,
	}
}

// BatchEvent builds a ko_batch event from a confirmed batch.
func BatchEvent(b ConfirmedBatch) SessionEvent {
	return SessionEvent{
		Name:   EventKOBatch,
		Window: &Window{T0: b.T0, T1: b.T1},
		TextEN: b.TextEN,
		TextKO: b.TextKO,
	}
}
