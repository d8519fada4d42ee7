package agent

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohankhatri7/AURA/internal/classify"
	"github.com/rohankhatri7/AURA/internal/llm"
	"github.com/rohankhatri7/AURA/internal/mode"
	"github.com/rohankhatri7/AURA/internal/render"
	"github.com/rohankhatri7/AURA/internal/safety"
	"github.com/rohankhatri7/AURA/internal/session"
	"github.com/rohankhatri7/AURA/internal/transcribe"
)

const (
	// tokenChunkRunes is the streaming granularity of the reply text.
	// The reply is fully rendered before streaming; chunking is presentational.
	tokenChunkRunes = 18

	// historyWindow is how many recent turns the planner sees.
	historyWindow = 10

	emptyReplyText  = "I hear you. What feels like the hardest part of this right now?"
	noSpeechText    = "I didn't catch that. Try again closer to the mic."
	unintelligible  = "[unintelligible]"
	maxOpenerWords  = 4
	recentAssistant = 2
)

// Orchestrator runs dialogue turns against a set of collaborators. It holds
// the session lock for the whole mutation phase of a turn, so concurrent
// connections sharing a session id serialize rather than interleave.
type Orchestrator struct {
	Store       *session.Store
	Gate        *safety.Gate
	Converter   Converter
	Transcriber Transcriber
	Intent      IntentClassifier
	Emotion     EmotionClassifier
	Planner     Planner
	Synth       Synthesizer
	TmpDir      string
}

func NewOrchestrator(store *session.Store, gate *safety.Gate, conv Converter, trans Transcriber, intent IntentClassifier, emotion EmotionClassifier, planner Planner, synth Synthesizer, tmpDir string) *Orchestrator {
	return &Orchestrator{
		Store:       store,
		Gate:        gate,
		Converter:   conv,
		Transcriber: trans,
		Intent:      intent,
		Emotion:     emotion,
		Planner:     planner,
		Synth:       synth,
		TmpDir:      tmpDir,
	}
}

// TranscribeUpload handles the batch transcription path: write the uploaded
// container audio to scratch, normalize it, transcribe, and record the result
// as a user turn. An empty transcript is recorded as "[unintelligible]" so the
// history still shows that the user spoke. Conversion failures surface as
// *audio.ConversionError for the handler to report.
func (o *Orchestrator) TranscribeUpload(ctx context.Context, sessionID, ext string, audio io.Reader) (string, error) {
	if err := os.MkdirAll(o.TmpDir, 0o755); err != nil {
		return "", err
	}
	rawPath := filepath.Join(o.TmpDir, sessionID+"_in."+ext)
	wavPath := filepath.Join(o.TmpDir, sessionID+"_in.wav")

	f, err := os.Create(rawPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := o.Converter.ToWav16kMono(ctx, rawPath, wavPath); err != nil {
		return "", err
	}
	segments, err := o.Transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		return "", err
	}
	transcript := strings.TrimSpace(transcribe.JoinText(segments))

	sess := o.Store.GetOrCreate(sessionID)
	sess.Lock()
	defer sess.Unlock()
	if transcript == "" {
		sess.Append(session.RoleUser, unintelligible)
	} else {
		sess.Append(session.RoleUser, transcript)
	}
	return transcript, nil
}

// Synthesize renders standalone speech for the REST /tts path and returns the
// generated filename inside the tmp dir.
func (o *Orchestrator) Synthesize(ctx context.Context, sessionID, text string) (string, error) {
	name := fmt.Sprintf("%s-%d.%s", sessionID, time.Now().Unix(), o.Synth.FileExt())
	if err := o.Synth.Synthesize(ctx, text, filepath.Join(o.TmpDir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// RunChatTurn runs a full turn for typed user text arriving on /ws/chat.
func (o *Orchestrator) RunChatTurn(ctx context.Context, sessionID, userText string, sink EventSink) error {
	return o.runTurn(ctx, sessionID, strings.TrimSpace(userText), nil, sink)
}

// RunSpeechTurn finalizes a streamed utterance: force one last transcription,
// then run the turn on the resulting transcript. Classification and the meta
// event still happen for an empty transcript; only the reply collapses to a
// fixed retry prompt with no audio.
func (o *Orchestrator) RunSpeechTurn(ctx context.Context, buf *StreamBuffer, sink EventSink) error {
	transcript, err := o.MaybeTranscribe(ctx, buf, sink, true)
	if err != nil {
		return err
	}
	userText := strings.TrimSpace(transcript)
	return o.runTurn(ctx, buf.SessionID, userText, &userText, sink)
}

// runTurn is the shared turn pipeline. transcript is non-nil only on the
// speech path and is echoed in the meta event, empty or not.
func (o *Orchestrator) runTurn(ctx context.Context, sessionID, userText string, transcript *string, sink EventSink) error {
	risk := o.Gate.Level(userText)

	intent := classify.IntentOther
	if userText != "" {
		if got, err := o.Intent.Classify(ctx, userText); err != nil {
			log.Printf("intent classify failed session=%s: %v", sessionID, err)
		} else {
			intent = got
		}
	}

	emotion := classify.EmotionNeutral
	if userText != "" {
		if got, err := o.Emotion.Detect(ctx, userText); err != nil {
			log.Printf("emotion detect failed session=%s: %v", sessionID, err)
		} else {
			emotion = got
		}
	}

	allowed := mode.Allowed(intent, emotion)

	sess := o.Store.GetOrCreate(sessionID)
	sess.Lock()
	defer sess.Unlock()

	turnIndex := sess.UserTurnCount()
	chosen := mode.Choose(allowed, sess.LastModes, fmt.Sprintf("%s:%d", sessionID, turnIndex))

	if err := sink.Meta(Meta{
		SessionID:  sessionID,
		Intent:     intent,
		Emotion:    emotion,
		Mode:       chosen,
		RiskLevel:  string(risk),
		Transcript: transcript,
	}); err != nil {
		return err
	}

	if transcript != nil && userText == "" {
		return sink.Final(Final{SessionID: sessionID, Text: noSpeechText, AudioURL: ""})
	}

	// The planner context must end at the previous turn; the current user
	// text travels separately in the tagged payload.
	history := sess.ContextWindow(historyWindow)
	disallowed := recentOpeners(sess)

	if userText != "" {
		sess.Append(session.RoleUser, userText)
	}

	if risk == safety.RiskHigh {
		text := safety.Message()
		sess.Append(session.RoleAssistant, text)
		audioURL := o.synthesizeReply(ctx, sessionID, text)
		return sink.Final(Final{SessionID: sessionID, Text: text, AudioURL: audioURL})
	}

	plan, err := o.Planner.Plan(ctx, history, userText, intent, emotion, chosen, disallowed)
	if err != nil {
		log.Printf("plan failed session=%s: %v", sessionID, err)
		plan = llm.Fallback(chosen, userText)
	}

	text, openers := render.FromPlan(plan, chosen, intent, emotion, sess.LastOpeners)
	if strings.TrimSpace(text) == "" {
		text = emptyReplyText
	}
	sess.LastOpeners = openers

	for _, chunk := range chunkRunes(text, tokenChunkRunes) {
		if err := sink.Token(chunk); err != nil {
			return err
		}
	}

	sess.Append(session.RoleAssistant, text)
	sess.PushMode(chosen)

	audioURL := o.synthesizeReply(ctx, sessionID, text)
	return sink.Final(Final{SessionID: sessionID, Text: text, AudioURL: audioURL})
}

// synthesizeReply writes the turn's audio to {session}_out.{ext} and returns
// its serving URL, or "" when synthesis fails. The reply text already went
// out as tokens, so failure here degrades to text-only.
func (o *Orchestrator) synthesizeReply(ctx context.Context, sessionID, text string) string {
	name := sessionID + "_out." + o.Synth.FileExt()
	if err := o.Synth.Synthesize(ctx, text, filepath.Join(o.TmpDir, name)); err != nil {
		log.Printf("synthesis failed session=%s: %v", sessionID, err)
		return ""
	}
	return "/audio/" + name
}

// recentOpeners collects the phrases the planner must not start with: the
// first words of the last two assistant turns plus the renderer's recent
// opener queue. Caller must hold the session lock.
func recentOpeners(sess *session.Session) []string {
	var out []string
	seen := 0
	h := sess.History
	for i := len(h) - 1; i >= 0 && seen < recentAssistant; i-- {
		if h[i].Role != session.RoleAssistant {
			continue
		}
		seen++
		words := strings.Fields(h[i].Content)
		if len(words) < 2 {
			continue
		}
		if len(words) > maxOpenerWords {
			words = words[:maxOpenerWords]
		}
		out = append(out, strings.Join(words, " "))
	}
	out = append(out, sess.LastOpeners...)
	return out
}

// chunkRunes splits text into rune-safe chunks of at most size runes.
func chunkRunes(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
