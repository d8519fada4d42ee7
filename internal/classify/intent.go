// Package classify holds the intent and emotion classifier clients backed by
// the Hugging Face Inference API.
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

const hfInferenceBase = "https://api-inference.huggingface.co/models/"

// IntentOther is the neutral intent used for empty text and classifier failures.
const IntentOther = "other"

// IntentLabels is the fixed candidate label set for zero-shot intent
// classification.
var IntentLabels = []string{
	"venting",
	"stress",
	"anxiety",
	"relationship",
	"goal_setting",
	"burnout",
	"grief",
	IntentOther,
}

// IntentClassifier runs zero-shot classification against a hosted MNLI model.
type IntentClassifier struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
}

func NewIntentClassifier(apiKey, model string) *IntentClassifier {
	if model == "" {
		model = "typeform/distilbert-base-uncased-mnli"
	}
	return &IntentClassifier{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		BaseURL:    hfInferenceBase,
		APIKey:     apiKey,
		Model:      model,
	}
}

type zeroShotRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
	} `json:"parameters"`
}

type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Classify returns the best intent label for text. Empty text is "other"
// without a network call. Labels outside the fixed set collapse to "other".
func (c *IntentClassifier) Classify(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return IntentOther, nil
	}
	if c.APIKey == "" {
		return "", fmt.Errorf("hf api key missing")
	}

	var zr zeroShotRequest
	zr.Inputs = text
	zr.Parameters.CandidateLabels = IntentLabels
	body, _ := json.Marshal(zr)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+c.Model, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("intent classifier error: status=%d body=%s", resp.StatusCode, string(b))
	}

	var out zeroShotResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Labels) == 0 {
		return IntentOther, nil
	}
	top := out.Labels[0]
	for _, l := range IntentLabels {
		if top == l {
			return top, nil
		}
	}
	return IntentOther, nil
}
