package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string
	TmpDir      string
	CORSOrigins []string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	WhisperBaseURL string
	WhisperAPIKey  string
	WhisperModel   string

	HFAPIKey     string
	IntentModel  string
	EmotionModel string

	TTSProvider       string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
	ElevenLabsModelID string
	DeepgramKey       string
	DeepgramModel     string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8000"
	}

	tmpDir := os.Getenv("TMP_DIR")
	if tmpDir == "" {
		tmpDir = "tmp"
	}

	origins := splitOrigins(os.Getenv("CORS_ALLOW_ORIGINS"))

	groqKey := os.Getenv("GROQ_API_KEY")
	if groqKey == "" {
		log.Println("Warning: GROQ_API_KEY not set - response planning will fall back to canned plans")
	}
	groqBase := os.Getenv("GROQ_BASE_URL")
	if groqBase == "" {
		groqBase = "https://api.groq.com/openai/v1"
	}
	groqModel := os.Getenv("GROQ_MODEL")
	if groqModel == "" {
		groqModel = "llama-3.3-70b-versatile"
	}

	whisperBase := os.Getenv("WHISPER_BASE_URL")
	if whisperBase == "" {
		whisperBase = "http://localhost:8081/v1"
	}
	whisperModel := os.Getenv("WHISPER_MODEL")
	if whisperModel == "" {
		whisperModel = "whisper-1"
	}

	hfKey := os.Getenv("HF_API_KEY")
	if hfKey == "" {
		log.Println("Warning: HF_API_KEY not set - intent/emotion classification will default to neutral labels")
	}
	intentModel := os.Getenv("INTENT_ZSC_MODEL")
	if intentModel == "" {
		intentModel = "typeform/distilbert-base-uncased-mnli"
	}
	emotionModel := os.Getenv("EMOTION_MODEL")
	if emotionModel == "" {
		emotionModel = "bhadresh-savani/distilbert-base-uncased-emotion"
	}

	ttsProvider := strings.ToLower(os.Getenv("TTS_PROVIDER"))
	if ttsProvider == "" {
		ttsProvider = "elevenlabs"
	}
	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	if elevenKey == "" && ttsProvider == "elevenlabs" {
		log.Println("Warning: ELEVENLABS_API_KEY not set - speech synthesis will be skipped")
	}
	voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
	if voiceID == "" {
		voiceID = "EXAVITQu4vr4xnSDxMaL"
	}
	elevenModel := os.Getenv("ELEVENLABS_MODEL_ID")
	if elevenModel == "" {
		elevenModel = "eleven_turbo_v2"
	}
	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramKey == "" && ttsProvider == "deepgram" {
		log.Println("Warning: DEEPGRAM_API_KEY not set - speech synthesis will be skipped")
	}

	log.Printf("config: HTTP_ADDRESS=%s TMP_DIR=%s TTS_PROVIDER=%s", addr, tmpDir, ttsProvider)
	return Config{
		HTTPAddress: addr,
		TmpDir:      tmpDir,
		CORSOrigins: origins,

		GroqAPIKey:  groqKey,
		GroqBaseURL: groqBase,
		GroqModel:   groqModel,

		WhisperBaseURL: whisperBase,
		WhisperAPIKey:  os.Getenv("WHISPER_API_KEY"),
		WhisperModel:   whisperModel,

		HFAPIKey:     hfKey,
		IntentModel:  intentModel,
		EmotionModel: emotionModel,

		TTSProvider:       ttsProvider,
		ElevenLabsKey:     elevenKey,
		ElevenLabsVoiceID: voiceID,
		ElevenLabsModelID: elevenModel,
		DeepgramKey:       deepgramKey,
		DeepgramModel:     os.Getenv("DEEPGRAM_TTS_MODEL"),
	}
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
