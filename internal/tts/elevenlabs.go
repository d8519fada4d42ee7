// Package tts holds the speech synthesizers. Both providers implement the
// same contract: turn text into a playable audio file on disk.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ElevenLabsClient synthesizes MP3 audio through the ElevenLabs REST API.
type ElevenLabsClient struct {
	HTTPClient *http.Client
	APIKey     string
	VoiceID    string
	ModelID    string

	// BaseURL overrides the production endpoint, used by tests.
	BaseURL string
}

func NewElevenLabsClient(apiKey, voiceID, modelID string) *ElevenLabsClient {
	if voiceID == "" {
		voiceID = "EXAVITQu4vr4xnSDxMaL"
	}
	if modelID == "" {
		modelID = "eleven_turbo_v2"
	}
	return &ElevenLabsClient{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		APIKey:     apiKey,
		VoiceID:    voiceID,
		ModelID:    modelID,
	}
}

// FileExt reports the container extension of synthesized files.
func (e *ElevenLabsClient) FileExt() string { return "mp3" }

// Synthesize generates speech for text and writes an MP3 at outPath.
// A missing API key is a configuration error raised at the point of use.
func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, outPath string) error {
	if e.APIKey == "" {
		return fmt.Errorf("missing ELEVENLABS_API_KEY")
	}

	endpoint := e.BaseURL
	if endpoint == "" {
		u := url.URL{Scheme: "https", Host: "api.elevenlabs.io"}
		endpoint = u.String()
	}
	endpoint += "/v1/text-to-speech/" + e.VoiceID

	body := map[string]any{
		"text":     text,
		"model_id": e.ModelID,
		"voice_settings": map[string]any{
			"stability":        0.4,
			"similarity_boost": 0.75,
		},
	}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs request error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elevenlabs status=%d body=%s", resp.StatusCode, string(b))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("elevenlabs read error: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, audio, 0o644)
}
