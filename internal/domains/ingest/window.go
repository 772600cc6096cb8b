package ingest

import (
	"regexp"
	"strings"

	"github.com/captionrelay/captionrelay/internal/types"
)

// windowBuffer accumulates cleaned English fragments until a confirm
// window is ready for batch translation. A window is ready once it
// holds enough characters and either spans the max duration or spans
// the min duration and ends on sentence punctuation.
type windowBuffer struct {
	minWindowSec float64
	maxWindowSec float64
	minChars     int

	parts    []string
	t0, t1   float64
	started  bool
	accumSec float64
}

func newWindowBuffer(minWindowSec, maxWindowSec float64, minChars int) *windowBuffer {
	if maxWindowSec < minWindowSec {
		maxWindowSec = minWindowSec
	}
	return &windowBuffer{
		minWindowSec: minWindowSec,
		maxWindowSec: maxWindowSec,
		minChars:     minChars,
	}
}

func (w *windowBuffer) add(segT0, segT1 float64, textEN string) {
	if textEN == "" {
		return
	}
	if !w.started {
		w.t0 = segT0
		w.started = true
	}
	w.t1 = segT1
	if d := segT1 - segT0; d > 0 {
		w.accumSec += d
	}
	w.parts = append(w.parts, strings.TrimSpace(textEN))
}

func (w *windowBuffer) joined() string {
	return strings.TrimSpace(strings.Join(w.parts, " "))
}

func (w *windowBuffer) empty() bool {
	return len(w.parts) == 0
}

func (w *windowBuffer) ready() bool {
	en := w.joined()
	if len(en) < w.minChars {
		return false
	}
	if w.accumSec >= w.maxWindowSec {
		return true
	}
	return w.accumSec >= w.minWindowSec && endsWithPunct(en)
}

func (w *windowBuffer) flush() (types.Window, string) {
	en := w.joined()
	if en != "" && !endsWithPunct(en) && len(en) > 40 {
		en += "."
	}
	win := types.Window{T0: r2(w.t0), T1: r2(w.t1)}
	w.parts = nil
	w.started = false
	w.t0, w.t1 = 0, 0
	w.accumSec = 0
	return win, en
}

func endsWithPunct(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}

var (
	wsRe       = regexp.MustCompile(`\s+`)
	ellipsisRe = regexp.MustCompile(`\.{3,}$`)
	punctEndRe = regexp.MustCompile(`[.!?]$`)
)

// cleanEN normalizes a recognized fragment before it is shown or
// accumulated: collapse whitespace, trim trailing ellipses, and give
// long unterminated fragments a closing period.
func cleanEN(s string) string {
	if s == "" {
		return s
	}
	s = strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
	s = ellipsisRe.ReplaceAllString(s, ".")
	if len(s) > 40 && !punctEndRe.MatchString(s) {
		s += "."
	}
	return s
}

// r2 rounds timeline positions to centiseconds for the wire.
func r2(x float64) float64 {
	return float64(int(x*100+0.5)) / 100
}
