package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rohankhatri7/AURA/internal/agent"
	"github.com/rohankhatri7/AURA/internal/audio"
	"github.com/rohankhatri7/AURA/internal/llm"
	"github.com/rohankhatri7/AURA/internal/safety"
	"github.com/rohankhatri7/AURA/internal/session"
	"github.com/rohankhatri7/AURA/internal/transcribe"
	"github.com/rohankhatri7/AURA/internal/ws"
)

type stubConverter struct{ err error }

func (s stubConverter) ToWav16kMono(ctx context.Context, src, dst string) error { return s.err }

type stubTranscriber struct{ text string }

func (s stubTranscriber) Transcribe(ctx context.Context, wavPath string) ([]transcribe.Segment, error) {
	if s.text == "" {
		return nil, nil
	}
	return []transcribe.Segment{{Text: s.text}}, nil
}

type stubIntent struct{}

func (stubIntent) Classify(ctx context.Context, text string) (string, error) { return "venting", nil }

type stubEmotion struct{}

func (stubEmotion) Detect(ctx context.Context, text string) (string, error) { return "neutral", nil }

type stubPlanner struct{}

func (stubPlanner) Plan(ctx context.Context, history []session.Turn, userText, intent, emotion, chosenMode string, disallowedOpeners []string) (llm.Plan, error) {
	return llm.Plan{Reflection: "Okay."}, nil
}

type stubSynth struct{ err error }

func (s stubSynth) Synthesize(ctx context.Context, text, outPath string) error {
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(outPath, []byte("mp3"), 0o644)
}
func (stubSynth) FileExt() string { return "mp3" }

func newTestServer(t *testing.T, conv stubConverter, trans stubTranscriber, synth stubSynth) (*Server, *echo.Echo) {
	t.Helper()
	orch := agent.NewOrchestrator(
		session.NewStore(),
		safety.NewGate(),
		conv,
		trans,
		stubIntent{},
		stubEmotion{},
		stubPlanner{},
		synth,
		t.TempDir(),
	)
	srv := New(orch, ws.NewHandler(orch), orch.TmpDir, []string{"*"})
	return srv, srv.Echo()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	_, e := newTestServer(t, stubConverter{}, stubTranscriber{}, stubSynth{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestTTS_MissingText(t *testing.T) {
	_, e := newTestServer(t, stubConverter{}, stubTranscriber{}, stubSynth{})
	req := httptest.NewRequest(http.MethodPost, "/tts", strings.NewReader(`{"text":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
	if decodeJSON(t, rec)["error"] != "Missing text" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestTTS_SynthesisFailure(t *testing.T) {
	_, e := newTestServer(t, stubConverter{}, stubTranscriber{}, stubSynth{err: errors.New("missing ELEVENLABS_API_KEY")})
	req := httptest.NewRequest(http.MethodPost, "/tts", strings.NewReader(`{"session_id":"s1","text":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code = %d", rec.Code)
	}
	body := decodeJSON(t, rec)
	if body["error"] != "TTS failed" || !strings.Contains(body["details"], "ELEVENLABS") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestTTS_ReturnsFilename(t *testing.T) {
	srv, e := newTestServer(t, stubConverter{}, stubTranscriber{}, stubSynth{})
	req := httptest.NewRequest(http.MethodPost, "/tts", strings.NewReader(`{"session_id":"s1","text":"hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}
	name := decodeJSON(t, rec)["filename"]
	if !strings.HasPrefix(name, "s1-") || !strings.HasSuffix(name, ".mp3") {
		t.Fatalf("filename = %q", name)
	}
	if _, err := os.Stat(filepath.Join(srv.TmpDir, name)); err != nil {
		t.Fatalf("synthesized file missing: %v", err)
	}
}

func TestAudio_ServesAndRejects(t *testing.T) {
	srv, e := newTestServer(t, stubConverter{}, stubTranscriber{}, stubSynth{})
	if err := os.WriteFile(filepath.Join(srv.TmpDir, "s1_out.mp3"), []byte("mp3-bytes"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/s1_out.mp3", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "mp3-bytes" {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/nope.mp3", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, sessionID, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if sessionID != "" {
		_ = mw.WriteField("session_id", sessionID)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte("container-audio")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestTranscribe_ReturnsTranscript(t *testing.T) {
	_, e := newTestServer(t, stubConverter{}, stubTranscriber{text: "hello world"}, stubSynth{})
	body, contentType := multipartUpload(t, "s1", "clip.webm")
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}
	got := decodeJSON(t, rec)
	if got["session_id"] != "s1" || got["transcript"] != "hello world" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestTranscribe_GeneratesSessionID(t *testing.T) {
	_, e := newTestServer(t, stubConverter{}, stubTranscriber{text: "hi"}, stubSynth{})
	body, contentType := multipartUpload(t, "", "clip.webm")
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}
	if decodeJSON(t, rec)["session_id"] == "" {
		t.Fatalf("expected generated session id")
	}
}

func TestTranscribe_ConversionFailureIsClientError(t *testing.T) {
	convErr := &audio.ConversionError{Src: "x.webm", Err: errors.New("Invalid data found when processing input")}
	_, e := newTestServer(t, stubConverter{err: convErr}, stubTranscriber{}, stubSynth{})
	body, contentType := multipartUpload(t, "s1", "clip.webm")
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
	got := decodeJSON(t, rec)
	if got["session_id"] != "s1" || !strings.Contains(got["error"], "ffmpeg") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	_, e := newTestServer(t, stubConverter{}, stubTranscriber{}, stubSynth{})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, echo.MIMEMultipartForm+"; boundary=x")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
}
