// Package agent orchestrates a dialogue turn: safety gating, classification,
// mode selection, planning, rendering and synthesis, with events pushed to the
// connection as the turn progresses.
package agent

import (
	"context"

	"github.com/rohankhatri7/AURA/internal/llm"
	"github.com/rohankhatri7/AURA/internal/session"
	"github.com/rohankhatri7/AURA/internal/transcribe"
)

// Converter normalizes container audio into the WAV the transcriber expects.
type Converter interface {
	ToWav16kMono(ctx context.Context, src, dst string) error
}

// Transcriber recognizes speech from a WAV file.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) ([]transcribe.Segment, error)
}

// IntentClassifier labels user text with a coaching intent.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// EmotionClassifier labels user text with an emotion.
type EmotionClassifier interface {
	Detect(ctx context.Context, text string) (string, error)
}

// Planner produces a structured response plan for a turn.
type Planner interface {
	Plan(ctx context.Context, history []session.Turn, userText, intent, emotion, chosenMode string, disallowedOpeners []string) (llm.Plan, error)
}

// Synthesizer turns reply text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
	FileExt() string
}

// Meta is the per-turn routing decision pushed to the client before the
// reply is generated. Transcript is non-nil only on the speech path, where
// it is reported even when recognition produced nothing.
type Meta struct {
	SessionID  string
	Intent     string
	Emotion    string
	Mode       string
	RiskLevel  string
	Transcript *string
}

// Final is the completed reply. AudioURL is empty when synthesis failed.
type Final struct {
	SessionID string
	Text      string
	AudioURL  string
}

// EventSink receives turn events in order. Implementations write them to the
// client connection; a returned error aborts the turn.
type EventSink interface {
	PartialTranscript(text string) error
	Meta(m Meta) error
	Token(delta string) error
	Final(f Final) error
}
