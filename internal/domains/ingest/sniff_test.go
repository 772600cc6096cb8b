package ingest

import (
	"testing"

	"github.com/captionrelay/captionrelay/pkg/capture"
	"github.com/stretchr/testify/assert"
)

func TestSniffRecognizesWAV(t *testing.T) {
	wav := capture.BuildWAV(16000, 1, make([]byte, 320))
	mime, ok := sniffContainer(wav)
	assert.True(t, ok)
	assert.Equal(t, "audio/wav", mime)
}

func TestSniffRecognizesOggVorbis(t *testing.T) {
	ogg := make([]byte, 64)
	copy(ogg, "OggS")
	copy(ogg[28:], "\x01vorbis")
	_, ok := sniffContainer(ogg)
	assert.True(t, ok)
}

func TestSniffRejectsGarbage(t *testing.T) {
	_, ok := sniffContainer([]byte("this is a text file pretending to be audio"))
	assert.False(t, ok)

	_, ok = sniffContainer([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.False(t, ok)
}
