package ws

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rohankhatri7/AURA/internal/agent"
	"github.com/rohankhatri7/AURA/internal/audio"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  65536,
	WriteBufferSize: 65536,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from arbitrary dev origins; restrict in production
		return true
	},
}

// Handler serves the two dialogue WebSocket endpoints. Each connection runs a
// single reader loop; turn work blocks the loop, which is the backpressure
// mechanism for a client that sends faster than the pipeline can respond.
type Handler struct {
	Orch *agent.Orchestrator
}

func NewHandler(orch *agent.Orchestrator) *Handler {
	return &Handler{Orch: orch}
}

// ServeChat handles typed-text turns: each {session_id?, user_text} frame runs
// one full turn, with meta/token/final pushed back in order.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sink := &connSink{conn: conn}
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var m inboundMessage
		if json.Unmarshal(data, &m) != nil {
			continue
		}
		// empty user_text still runs a turn; the pipeline classifies it
		// as "other"/"neutral" and replies without recording a user turn
		sessionID := m.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		if err := h.Orch.RunChatTurn(r.Context(), sessionID, m.UserText, sink); err != nil {
			log.Printf("chat turn error session=%s: %v", sessionID, err)
			return
		}
	}
}

// ServeStream handles spoken turns: audio arrives as binary frames or base64
// audio_chunk messages, partial transcripts are pushed while the utterance
// accumulates, and end_of_speech finalizes the turn.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sink := &connSink{conn: conn}
	buf := agent.NewStreamBuffer("", "webm")

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		switch mt {
		case websocket.BinaryMessage:
			ensureSession(buf)
			buf.Append(data)
			if _, err := h.Orch.MaybeTranscribe(r.Context(), buf, sink, false); err != nil {
				log.Printf("stream partial error session=%s: %v", buf.SessionID, err)
				return
			}
		case websocket.TextMessage:
			var m inboundMessage
			if json.Unmarshal(data, &m) != nil {
				continue
			}
			switch m.Type {
			case "start":
				sessionID := m.SessionID
				if sessionID == "" {
					sessionID = uuid.NewString()
				}
				ext := m.Ext
				if ext == "" {
					ext = audio.ExtFromMime(m.MimeType)
				}
				buf.Reset(sessionID, ext)
			case "audio_chunk":
				chunk, derr := base64.StdEncoding.DecodeString(m.Chunk)
				if derr != nil || len(chunk) == 0 {
					continue
				}
				ensureSession(buf)
				buf.Append(chunk)
				if _, err := h.Orch.MaybeTranscribe(r.Context(), buf, sink, false); err != nil {
					log.Printf("stream partial error session=%s: %v", buf.SessionID, err)
					return
				}
			case "end_of_speech":
				if err := h.Orch.RunSpeechTurn(r.Context(), buf, sink); err != nil {
					log.Printf("speech turn error session=%s: %v", buf.SessionID, err)
					return
				}
				buf.Clear()
			}
		}
	}
}

// ensureSession assigns a generated session id when audio arrives before any
// start message named one.
func ensureSession(buf *agent.StreamBuffer) {
	if buf.SessionID == "" {
		buf.SessionID = uuid.NewString()
	}
}
