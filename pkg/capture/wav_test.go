package capture

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParseWAVRoundtrip(t *testing.T) {
	pcm := make([]byte, 3200)
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}

	wav := BuildWAV(16000, 1, pcm)
	require.Equal(t, 44+len(pcm), len(wav))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))

	rate, channels, got, err := ParseWAV(wav)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, 1, channels)
	assert.Equal(t, pcm, got)
}

func TestBuildWAVHeaderFields(t *testing.T) {
	wav := BuildWAV(44100, 2, make([]byte, 100))

	// byte rate = rate * channels * 2
	byteRate := binary.LittleEndian.Uint32(wav[28:32])
	assert.Equal(t, uint32(44100*2*2), byteRate)
	blockAlign := binary.LittleEndian.Uint16(wav[32:34])
	assert.Equal(t, uint16(4), blockAlign)
}

func TestParseWAVRejectsGarbage(t *testing.T) {
	_, _, _, err := ParseWAV([]byte("definitely not audio"))
	assert.Error(t, err)

	_, _, _, err = ParseWAV(nil)
	assert.Error(t, err)

	// RIFF header but no chunks
	_, _, _, err = ParseWAV([]byte("RIFF\x00\x00\x00\x00WAVE"))
	assert.Error(t, err)
}
