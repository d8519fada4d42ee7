package ws

import (
	"github.com/gorilla/websocket"

	"github.com/rohankhatri7/AURA/internal/agent"
)

// connSink writes turn events to a WebSocket connection as JSON frames.
// It is only ever used from the connection's single reader loop, so writes
// need no extra serialization.
type connSink struct {
	conn *websocket.Conn
}

func (s *connSink) PartialTranscript(text string) error {
	return s.conn.WriteJSON(partialMessage{Type: "partial_transcript", Text: text})
}

func (s *connSink) Meta(m agent.Meta) error {
	return s.conn.WriteJSON(metaMessage{
		Type:       "meta",
		SessionID:  m.SessionID,
		Intent:     m.Intent,
		Emotion:    m.Emotion,
		Mode:       m.Mode,
		RiskLevel:  m.RiskLevel,
		Transcript: m.Transcript,
	})
}

func (s *connSink) Token(delta string) error {
	return s.conn.WriteJSON(tokenMessage{Type: "token", Delta: delta})
}

func (s *connSink) Final(f agent.Final) error {
	return s.conn.WriteJSON(finalMessage{
		Type:      "final",
		SessionID: f.SessionID,
		Text:      f.Text,
		AudioURL:  f.AudioURL,
	})
}
