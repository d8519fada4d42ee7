package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EmotionNeutral is the default label for empty text and classifier failures.
const EmotionNeutral = "neutral"

// emotionLabelMap normalizes model labels to the fixed emotion vocabulary.
var emotionLabelMap = map[string]string{
	"joy":      "joy",
	"sadness":  "sadness",
	"anger":    "anger",
	"fear":     "fear",
	"love":     "love",
	"surprise": "surprise",
	"neutral":  "neutral",
}

// EmotionClassifier scores text against a hosted emotion classification model.
type EmotionClassifier struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
}

func NewEmotionClassifier(apiKey, model string) *EmotionClassifier {
	if model == "" {
		model = "bhadresh-savani/distilbert-base-uncased-emotion"
	}
	return &EmotionClassifier{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		BaseURL:    hfInferenceBase,
		APIKey:     apiKey,
		Model:      model,
	}
}

type emotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// DetectWithScore returns the normalized top emotion label and its confidence.
func (c *EmotionClassifier) DetectWithScore(ctx context.Context, text string) (string, float64, error) {
	if strings.TrimSpace(text) == "" {
		return EmotionNeutral, 0, nil
	}
	if c.APIKey == "" {
		return "", 0, fmt.Errorf("hf api key missing")
	}

	body, _ := json.Marshal(map[string]string{"inputs": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+c.Model, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("emotion classifier error: status=%d body=%s", resp.StatusCode, string(b))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}

	best, ok := bestScore(raw)
	if !ok {
		return EmotionNeutral, 0, nil
	}
	return normalizeEmotion(best.Label), best.Score, nil
}

// Detect is DetectWithScore without the confidence.
func (c *EmotionClassifier) Detect(ctx context.Context, text string) (string, error) {
	label, _, err := c.DetectWithScore(ctx, text)
	return label, err
}

// bestScore tolerates both response shapes the inference API produces:
// a flat score list or a nested per-input list.
func bestScore(raw []byte) (emotionScore, bool) {
	var nested [][]emotionScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return maxScore(nested[0]), true
	}
	var flat []emotionScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return maxScore(flat), true
	}
	return emotionScore{}, false
}

func maxScore(scores []emotionScore) emotionScore {
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best
}

func normalizeEmotion(label string) string {
	if label == "" {
		return EmotionNeutral
	}
	if n, ok := emotionLabelMap[strings.ToLower(label)]; ok {
		return n
	}
	return EmotionNeutral
}
