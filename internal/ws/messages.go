// Package ws carries the dialogue WebSocket protocol: inbound control
// messages and the ordered event stream pushed back to the client.
package ws

// inboundMessage is every text frame a client can send. Type selects which
// fields are meaningful; unknown types and unparseable frames are ignored.
type inboundMessage struct {
	Type string `json:"type"`

	// chat turns
	SessionID string `json:"session_id,omitempty"`
	UserText  string `json:"user_text,omitempty"`

	// stream start
	MimeType string `json:"mime_type,omitempty"`
	Ext      string `json:"ext,omitempty"`

	// audio_chunk, base64
	Chunk string `json:"chunk,omitempty"`
}

type partialMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type metaMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
	Emotion   string `json:"emotion"`
	Mode      string `json:"mode"`
	RiskLevel string `json:"risk_level"`

	// present on spoken turns, even when empty
	Transcript *string `json:"transcript,omitempty"`
}

type tokenMessage struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
}

type finalMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	AudioURL  string `json:"audio_url"`
}
