package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Normalizer converts an audio payload of unknown or ambiguous
// container into mono 16kHz WAV that the ASR engines accept.
type Normalizer interface {
	Normalize(ctx context.Context, raw []byte, hint string) ([]byte, error)
}

// FFmpeg shells out to the ffmpeg binary. Stateless; one invocation
// per chunk.
type FFmpeg struct {
	TmpDir string
}

func NewFFmpeg(tmpDir string) *FFmpeg {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &FFmpeg{TmpDir: tmpDir}
}

func (f *FFmpeg) Normalize(ctx context.Context, raw []byte, hint string) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	in, err := os.CreateTemp(f.TmpDir, "chunk-in-*"+extFor(hint))
	if err != nil {
		return nil, fmt.Errorf("tmp input: %w", err)
	}
	defer os.Remove(in.Name())
	if _, err := in.Write(raw); err != nil {
		in.Close()
		return nil, fmt.Errorf("write input: %w", err)
	}
	in.Close()

	out := filepath.Join(f.TmpDir, filepath.Base(in.Name())+"_16k.wav")
	defer os.Remove(out)

	// ffmpeg -y -i input -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", in.Name(),
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}

	wav, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return wav, nil
}

func extFor(hint string) string {
	switch hint {
	case "audio/webm", "video/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	case "audio/mp4", "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}
