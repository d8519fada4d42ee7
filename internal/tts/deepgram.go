package tts

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

// DeepgramClient synthesizes speech over the Deepgram speak WebSocket,
// collecting the linear16 stream into a WAV file.
type DeepgramClient struct {
	apiKey     string
	model      string
	sampleRate int
	encoding   string
}

func NewDeepgramClient(apiKey, model string) *DeepgramClient {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &DeepgramClient{apiKey: apiKey, model: model, sampleRate: 48000, encoding: "linear16"}
}

// FileExt reports the container extension of synthesized files.
func (d *DeepgramClient) FileExt() string { return "wav" }

// Synthesize generates speech for text and writes a WAV at outPath.
func (d *DeepgramClient) Synthesize(ctx context.Context, text, outPath string) error {
	if d.apiKey == "" {
		return fmt.Errorf("missing DEEPGRAM_API_KEY")
	}
	if text == "" {
		return fmt.Errorf("deepgram: empty text")
	}

	options := &clientinterfaces.WSSpeakOptions{
		Model:      d.model,
		Encoding:   d.encoding,
		SampleRate: d.sampleRate,
	}

	var mu sync.Mutex
	var pcm []byte
	var lastRecv time.Time

	cb := &speakCallback{onBinary: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		mu.Lock()
		pcm = append(pcm, data...)
		lastRecv = time.Now()
		mu.Unlock()
		return nil
	}}

	dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return fmt.Errorf("deepgram: create ws client: %w", err)
	}
	defer dg.Stop()

	if ok := dg.Connect(); !ok {
		return fmt.Errorf("deepgram: connect failed")
	}
	if err := dg.SpeakWithText(text); err != nil {
		return fmt.Errorf("deepgram: speak text: %w", err)
	}
	if err := dg.Flush(); err != nil {
		log.Printf("deepgram: flush error: %v", err)
	}

	// Drain until the stream goes idle or the deadline passes.
	idleWindow := 400 * time.Millisecond
	deadline := time.Now().Add(12 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			mu.Lock()
			got := len(pcm) > 0
			idle := got && time.Since(lastRecv) > idleWindow
			mu.Unlock()
			if idle {
				return d.writeWav(outPath, pcm)
			}
			if time.Now().After(deadline) {
				if got {
					return d.writeWav(outPath, pcm)
				}
				return fmt.Errorf("deepgram: no audio received before deadline")
			}
		}
	}
}

func (d *DeepgramClient) writeWav(outPath string, pcm []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, wavFromPCM16(pcm, d.sampleRate, 1), 0o644)
}

type speakCallback struct{ onBinary func([]byte) error }

func (s *speakCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (s *speakCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (s *speakCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (s *speakCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (s *speakCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (s *speakCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (s *speakCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (s *speakCallback) UnhandledEvent([]byte) error                    { return nil }
func (s *speakCallback) Binary(byMsg []byte) error {
	if s.onBinary != nil {
		return s.onBinary(byMsg)
	}
	return nil
}
