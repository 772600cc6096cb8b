package ingest

import (
	"github.com/gabriel-vasile/mimetype"
)

// Containers the ASR engines accept without help. Anything else goes
// through the transcoding fallback before rejection is even considered.
var passthrough = map[string]bool{
	"audio/wav":  true,
	"audio/webm": true,
	"video/webm": true,
	"audio/ogg":  true,
	"audio/mpeg": true,
	"audio/mp4":  true,
	"video/mp4":  true,
	"audio/flac": true,
}

// sniffContainer detects the segment's container signature. The second
// return is false when the signature is ambiguous or unrecognized.
func sniffContainer(b []byte) (string, bool) {
	mt := mimetype.Detect(b)
	for m := mt; m != nil; m = m.Parent() {
		if passthrough[m.String()] {
			return m.String(), true
		}
	}
	return mt.String(), false
}
