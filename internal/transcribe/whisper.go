// Package transcribe is a client for an OpenAI-compatible Whisper
// transcription endpoint (whisper.cpp server, Groq, or the hosted API).
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Segment is one timed piece of recognized speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type transcriptionResponse struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

type WhisperClient struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
}

func NewWhisperClient(baseURL, apiKey, model string) *WhisperClient {
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperClient{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Model:      model,
	}
}

// Transcribe uploads the WAV at wavPath and returns the recognized segments.
func (c *WhisperClient) Transcribe(ctx context.Context, wavPath string) ([]Segment, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	_ = mw.WriteField("model", c.Model)
	_ = mw.WriteField("response_format", "verbose_json")
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper error: status=%d body=%s", resp.StatusCode, string(b))
	}

	var tr transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	if len(tr.Segments) == 0 && strings.TrimSpace(tr.Text) != "" {
		// plain-json servers omit segments; synthesize one from the full text
		return []Segment{{Text: tr.Text}}, nil
	}
	return tr.Segments, nil
}

// JoinText concatenates trimmed segment texts with single spaces.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
