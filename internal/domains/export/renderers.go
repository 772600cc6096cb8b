package export

import (
	"fmt"
	"strings"

	"github.com/captionrelay/captionrelay/internal/domains/session"
	"github.com/captionrelay/captionrelay/internal/types"
)

// RenderTXT is the canonical transcript text, shared with the
// transcript fetch endpoint.
func RenderTXT(batches []types.ConfirmedBatch) string {
	return session.RenderTXT(batches)
}

// RenderSRT renders the confirmed log as a subtitle file.
func RenderSRT(batches []types.ConfirmedBatch) string {
	var lines []string
	for i, b := range batches {
		lines = append(lines, fmt.Sprintf("%d", i+1))
		lines = append(lines, fmt.Sprintf("%s --> %s", srtTime(b.T0), srtTime(b.T1)))
		lines = append(lines, b.TextEN)
		if b.TextKO != "" {
			lines = append(lines, b.TextKO)
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// srtTime formats seconds as 00:00:12,340.
func srtTime(t float64) string {
	if t < 0 {
		t = 0
	}
	h := int(t) / 3600
	m := (int(t) % 3600) / 60
	s := int(t) % 60
	ms := int((t-float64(int(t)))*1000 + 0.5)
	if ms > 999 {
		ms = 999
	}
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
