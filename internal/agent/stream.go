package agent

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohankhatri7/AURA/internal/transcribe"
)

// minPartialInterval is the debounce window between partial transcriptions.
const minPartialInterval = 500 * time.Millisecond

// StreamBuffer accumulates one utterance worth of container audio for a
// connection. It is owned by a single reader loop and needs no locking.
type StreamBuffer struct {
	SessionID string

	ext         string
	data        []byte
	lastPartial string
	lastAt      time.Time

	// now is replaceable in tests to drive the debounce clock.
	now func() time.Time
}

func NewStreamBuffer(sessionID, ext string) *StreamBuffer {
	if ext == "" {
		ext = "webm"
	}
	return &StreamBuffer{SessionID: sessionID, ext: ext, now: time.Now}
}

// Reset drops accumulated audio and partial state, keeping the clock.
// Used when a new utterance starts on the same connection.
func (b *StreamBuffer) Reset(sessionID, ext string) {
	if ext == "" {
		ext = "webm"
	}
	b.SessionID = sessionID
	b.ext = ext
	b.data = nil
	b.lastPartial = ""
	b.lastAt = time.Time{}
}

// Clear drops buffered audio and partial state but keeps the session id and
// container ext, readying the buffer for the next utterance.
func (b *StreamBuffer) Clear() {
	b.data = nil
	b.lastPartial = ""
	b.lastAt = time.Time{}
}

// Append adds a chunk of container audio to the buffer.
func (b *StreamBuffer) Append(chunk []byte) {
	b.data = append(b.data, chunk...)
}

// Len reports the number of buffered bytes.
func (b *StreamBuffer) Len() int { return len(b.data) }

// MaybeTranscribe transcribes the buffered audio, debounced to at most one
// attempt per minPartialInterval unless force is set. An empty buffer is never
// transcribed. Conversion and transcription failures keep the previous partial
// but still advance the debounce timestamp so a broken stream does not retry
// on every chunk. When the transcript changes and is non-empty, it is pushed
// to the sink as a partial and remembered. The current best transcript is
// returned either way.
func (o *Orchestrator) MaybeTranscribe(ctx context.Context, b *StreamBuffer, sink EventSink, force bool) (string, error) {
	if !force && b.now().Sub(b.lastAt) < minPartialInterval {
		return b.lastPartial, nil
	}
	if len(b.data) == 0 {
		return b.lastPartial, nil
	}
	b.lastAt = b.now()

	rawPath := filepath.Join(o.TmpDir, b.SessionID+"_stream_in."+b.ext)
	wavPath := filepath.Join(o.TmpDir, b.SessionID+"_stream_in.wav")
	if err := os.MkdirAll(o.TmpDir, 0o755); err != nil {
		return b.lastPartial, err
	}
	if err := os.WriteFile(rawPath, b.data, 0o644); err != nil {
		return b.lastPartial, err
	}

	if err := o.Converter.ToWav16kMono(ctx, rawPath, wavPath); err != nil {
		// Mid-utterance container data is often truncated at a bad
		// boundary; keep the previous partial and wait for more audio.
		log.Printf("stream convert failed session=%s: %v", b.SessionID, err)
		return b.lastPartial, nil
	}

	segments, err := o.Transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		log.Printf("stream transcribe failed session=%s: %v", b.SessionID, err)
		return b.lastPartial, nil
	}

	text := strings.TrimSpace(transcribe.JoinText(segments))
	if text != "" && text != b.lastPartial {
		b.lastPartial = text
		if err := sink.PartialTranscript(text); err != nil {
			return b.lastPartial, err
		}
	}
	return b.lastPartial, nil
}
