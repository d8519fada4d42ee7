// Package httpserver assembles the echo application: REST endpoints for
// batch transcription, standalone synthesis and audio serving, plus the two
// dialogue WebSocket routes.
package httpserver

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rohankhatri7/AURA/internal/agent"
	"github.com/rohankhatri7/AURA/internal/audio"
	"github.com/rohankhatri7/AURA/internal/ws"
)

type Server struct {
	Orch        *agent.Orchestrator
	WS          *ws.Handler
	TmpDir      string
	CORSOrigins []string
}

func New(orch *agent.Orchestrator, wsHandler *ws.Handler, tmpDir string, corsOrigins []string) *Server {
	return &Server{Orch: orch, WS: wsHandler, TmpDir: tmpDir, CORSOrigins: corsOrigins}
}

// Echo builds the configured echo instance with middleware and routes.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	s.Register(e)
	return e
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/transcribe", s.transcribe)
	e.POST("/tts", s.tts)
	e.GET("/audio/:filename", s.audio)
	e.GET("/ws/chat", func(c echo.Context) error {
		s.WS.ServeChat(c.Response(), c.Request())
		return nil
	})
	e.GET("/ws/stream", func(c echo.Context) error {
		s.WS.ServeStream(c.Response(), c.Request())
		return nil
	})
}

// transcribe accepts a multipart audio upload, normalizes and transcribes it,
// and records the result as a user turn in the session.
func (s *Server) transcribe(c echo.Context) error {
	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing audio file"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unreadable audio file"})
	}
	defer src.Close()

	ext := strings.TrimPrefix(filepath.Ext(fh.Filename), ".")
	if ext == "" {
		ext = audio.ExtFromMime(fh.Header.Get("Content-Type"))
	}

	transcript, err := s.Orch.TranscribeUpload(c.Request().Context(), sessionID, ext, src)
	if err != nil {
		var convErr *audio.ConversionError
		if errors.As(err, &convErr) {
			// Usually a malformed upload, so the client gets the diagnostic
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":      convErr.Error(),
				"session_id": sessionID,
			})
		}
		c.Echo().Logger.Errorf("transcribe failed session=%s: %v", sessionID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Transcription failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"session_id": sessionID,
		"transcript": transcript,
	})
}

type ttsRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// tts synthesizes standalone speech and returns the generated filename,
// served afterwards by the audio route.
func (s *Server) tts(c echo.Context) error {
	var req ttsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing text"})
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	name, err := s.Orch.Synthesize(c.Request().Context(), sessionID, req.Text)
	if err != nil {
		c.Echo().Logger.Errorf("tts failed session=%s: %v", sessionID, err)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error":   "TTS failed",
			"details": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"filename": name})
}

// audio serves a generated file from the tmp dir by bare filename.
func (s *Server) audio(c echo.Context) error {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == string(filepath.Separator) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	path := filepath.Join(s.TmpDir, name)
	if err := c.File(path); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return nil
}
