package caption

import (
	"fmt"
	"strings"
	"sync"

	"github.com/captionrelay/captionrelay/internal/types"
)

// Accumulator appends confirmed batches in receipt order and renders
// the running transcript for display. Receipt order is collaborator
// finalization order, which may differ from window-time order; it is
// kept as-is.
type Accumulator struct {
	mu      sync.RWMutex
	batches []types.ConfirmedBatch
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add records one confirmed batch.
func (a *Accumulator) Add(b types.ConfirmedBatch) {
	a.mu.Lock()
	a.batches = append(a.batches, b)
	a.mu.Unlock()
}

// Last returns up to n most recent batches, oldest first.
func (a *Accumulator) Last(n int) []types.ConfirmedBatch {
	a.mu.RLock()
	defer a.mu.RUnlock()
	start := 0
	if len(a.batches) > n {
		start = len(a.batches) - n
	}
	out := make([]types.ConfirmedBatch, len(a.batches)-start)
	copy(out, a.batches[start:])
	return out
}

// Transcript renders everything received so far.
func (a *Accumulator) Transcript() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var lines []string
	for i, b := range a.batches {
		lines = append(lines, fmt.Sprintf("[%d] (%.2f–%.2fs)", i+1, b.T0, b.T1))
		lines = append(lines, "EN: "+b.TextEN)
		if b.TextKO != "" {
			lines = append(lines, "KO: "+b.TextKO)
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Len reports how many batches have been received.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.batches)
}
