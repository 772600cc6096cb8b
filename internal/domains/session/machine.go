package session

import (
	"context"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/looplab/fsm"
)

// Lifecycle event names.
const (
	evPause    = "pause"
	evResume   = "resume"
	evComplete = "complete"
)

// newLifecycle builds the per-session state machine. A session is born
// recording; completed is terminal.
func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(
		string(types.SessionRecording),
		fsm.Events{
			{Name: evPause, Src: []string{string(types.SessionRecording)}, Dst: string(types.SessionPaused)},
			{Name: evResume, Src: []string{string(types.SessionPaused)}, Dst: string(types.SessionRecording)},
			{Name: evComplete, Src: []string{string(types.SessionRecording), string(types.SessionPaused)}, Dst: string(types.SessionCompleted)},
		},
		fsm.Callbacks{},
	)
}

// fire runs one lifecycle event, translating fsm transition errors into
// the domain's state error.
func fire(ctx context.Context, m *fsm.FSM, event string) error {
	if err := m.Event(ctx, event); err != nil {
		return ErrInvalidSessionState
	}
	return nil
}
