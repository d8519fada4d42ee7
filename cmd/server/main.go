package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohankhatri7/AURA/internal/agent"
	"github.com/rohankhatri7/AURA/internal/audio"
	"github.com/rohankhatri7/AURA/internal/classify"
	"github.com/rohankhatri7/AURA/internal/config"
	"github.com/rohankhatri7/AURA/internal/httpserver"
	"github.com/rohankhatri7/AURA/internal/llm"
	"github.com/rohankhatri7/AURA/internal/safety"
	"github.com/rohankhatri7/AURA/internal/session"
	"github.com/rohankhatri7/AURA/internal/transcribe"
	"github.com/rohankhatri7/AURA/internal/tts"
	"github.com/rohankhatri7/AURA/internal/ws"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	if err := os.MkdirAll(cfg.TmpDir, 0o755); err != nil {
		log.Fatalf("tmp dir: %v", err)
	}

	var synth agent.Synthesizer
	switch cfg.TTSProvider {
	case "deepgram":
		synth = tts.NewDeepgramClient(cfg.DeepgramKey, cfg.DeepgramModel)
	default:
		synth = tts.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID)
	}

	orch := agent.NewOrchestrator(
		session.NewStore(),
		safety.NewGate(),
		audio.NewFFmpeg(),
		transcribe.NewWhisperClient(cfg.WhisperBaseURL, cfg.WhisperAPIKey, cfg.WhisperModel),
		classify.NewIntentClassifier(cfg.HFAPIKey, cfg.IntentModel),
		classify.NewEmotionClassifier(cfg.HFAPIKey, cfg.EmotionModel),
		llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel),
		synth,
		cfg.TmpDir,
	)

	srv := httpserver.New(orch, ws.NewHandler(orch), cfg.TmpDir, cfg.CORSOrigins)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Echo(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
