package capture

import (
	"encoding/binary"
	"fmt"
)

// BuildWAV wraps raw 16-bit PCM in a canonical RIFF/WAVE container so
// every emitted segment is independently decodable.
func BuildWAV(sampleRate, channels int, pcm []byte) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, []byte("RIFF")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, bitsPerSample)
	buf = append(buf, []byte("data")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}

// ParseWAV extracts format and PCM payload from a RIFF/WAVE file.
func ParseWAV(b []byte) (sampleRate, channels int, pcm []byte, err error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return 0, 0, nil, fmt.Errorf("not a RIFF/WAVE file")
	}
	pos := 12
	for pos+8 <= len(b) {
		chunkID := string(b[pos : pos+4])
		chunkLen := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkLen > len(b) {
			chunkLen = len(b) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return 0, 0, nil, fmt.Errorf("short fmt chunk")
			}
			channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
		case "data":
			pcm = b[body : body+chunkLen]
		}
		pos = body + chunkLen
		if chunkLen%2 == 1 {
			pos++
		}
	}
	if sampleRate == 0 || channels == 0 || pcm == nil {
		return 0, 0, nil, fmt.Errorf("missing fmt or data chunk")
	}
	return sampleRate, channels, pcm, nil
}
