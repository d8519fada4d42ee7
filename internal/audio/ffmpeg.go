// Package audio normalizes browser-recorded container audio into the mono
// 16 kHz WAV the transcriber expects. Conversion shells out to ffmpeg.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ConversionError reports a failed normalization. On the batch path it is
// surfaced to the caller; on the streaming path it only suppresses the
// partial-transcript update.
type ConversionError struct {
	Src string
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("audio convert failed (ffmpeg): %v", e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// FFmpeg converts arbitrary container audio to canonical WAV via the ffmpeg
// binary on PATH.
type FFmpeg struct {
	Binary string
}

func NewFFmpeg() *FFmpeg { return &FFmpeg{Binary: "ffmpeg"} }

// ToWav16kMono writes a mono 16 kHz WAV of src at dst, overwriting dst.
func (f *FFmpeg) ToWav16kMono(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.Binary,
		"-y",
		"-i", src,
		"-ac", "1",
		"-ar", "16000",
		"-vn",
		dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &ConversionError{Src: src, Err: fmt.Errorf("%w: %s", err, lastLine(stderr.String()))}
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// ExtFromMime maps a recorder mime type to a container extension hint.
func ExtFromMime(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "mp4"):
		return "mp4"
	case strings.Contains(mimeType, "ogg"):
		return "ogg"
	case strings.Contains(mimeType, "webm"):
		return "webm"
	default:
		return "webm"
	}
}
