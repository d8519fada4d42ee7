// Package llm obtains structured response plans from an OpenAI-compatible
// chat-completions endpoint (Groq by default).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rohankhatri7/AURA/internal/mode"
	"github.com/rohankhatri7/AURA/internal/session"
)

const planPrompt = "You are a supportive reflective-listening coach for practice and education. " +
	"You are NOT a therapist or medical professional.\n\n" +
	"You must return STRICT JSON only. No markdown, no extra text.\n" +
	"JSON schema:\n" +
	"{\n" +
	"  \"mode\": \"<one of: reflection, reframe, options, values, micro_plan, summary, compassion, curious>\",\n" +
	"  \"reflection\": \"<1 sentence reflective statement about what user said>\",\n" +
	"  \"core\": \"<main guidance in 1 to 4 sentences depending on mode>\",\n" +
	"  \"question\": \"<one open-ended question>\",\n" +
	"  \"tagline\": \"<optional short supportive closing, can be empty>\"\n" +
	"}\n\n" +
	"Rules:\n" +
	"- Keep everything concise and warm, casual, not clinical.\n" +
	"- Do not claim to be a therapist.\n" +
	"- Avoid repeating phrasing; do not start with disallowed openers.\n" +
	"- Do not include markdown bullets unless mode=options, then use 2-4 options " +
	"inside \"core\" separated by \" | \" (pipe).\n"

// Plan is the structured intermediate output rendered into the final reply.
type Plan struct {
	Mode       string `json:"mode"`
	Reflection string `json:"reflection"`
	Core       string `json:"core"`
	Question   string `json:"question"`
	Tagline    string `json:"tagline"`
}

type GroqClient struct {
	HTTPClient *http.Client
	APIKey     string
	BaseURL    string
	Model      string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

func NewGroqClient(apiKey, baseURL, model string) *GroqClient {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	return &GroqClient{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
	}
}

// Plan asks the model for a strict-JSON plan. Transport and configuration
// failures are returned as errors; an unparseable model reply degrades to the
// deterministic fallback plan without error.
func (c *GroqClient) Plan(ctx context.Context, history []session.Turn, userText, intent, emotion, chosenMode string, disallowedOpeners []string) (Plan, error) {
	if c.APIKey == "" {
		return Plan{}, fmt.Errorf("groq api key missing")
	}

	messages := []chatMessage{{Role: "system", Content: planPrompt}}
	for _, t := range history {
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}

	openerList := strings.Join(nonEmpty(disallowedOpeners), ", ")
	if openerList == "" {
		openerList = "none"
	}
	messages = append(messages, chatMessage{
		Role: "user",
		Content: fmt.Sprintf("[intent=%s][emotion=%s][mode=%s]\nDisallowed openers: %s\nUser: %s",
			intent, emotion, chosenMode, openerList, userText),
	})

	reqBody, _ := json.Marshal(chatCompletionsRequest{Model: c.Model, Messages: messages, Temperature: 0.7})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return Plan{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Plan{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return Plan{}, fmt.Errorf("groq error: status=%d body=%s", resp.StatusCode, string(b))
	}
	var cr chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Plan{}, err
	}
	if len(cr.Choices) == 0 {
		return Plan{}, fmt.Errorf("groq: empty choices")
	}

	plan, ok := ExtractPlan(cr.Choices[0].Message.Content)
	if !ok {
		return Fallback(chosenMode, userText), nil
	}
	return Sanitize(plan, chosenMode), nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractPlan parses model output into a Plan. It tries the whole text first,
// then the outermost brace-delimited region to salvage replies wrapped in
// prose or code fences. Any non-empty JSON object counts as a plan, even when
// every recognized field is blank; the renderer fills in the defaults.
func ExtractPlan(text string) (Plan, bool) {
	if p, ok := planFromJSON(text); ok {
		return p, true
	}
	if m := jsonObjectRe.FindString(text); m != "" {
		if p, ok := planFromJSON(m); ok {
			return p, true
		}
	}
	return Plan{}, false
}

func planFromJSON(s string) (Plan, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil || len(fields) == 0 {
		return Plan{}, false
	}
	var p Plan
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return Plan{}, false
	}
	return p, true
}

// Sanitize overwrites a non-canonical mode with the requested one; the
// planner is not trusted to set mode correctly.
func Sanitize(p Plan, requestedMode string) Plan {
	valid := false
	for _, m := range mode.Modes {
		if p.Mode == m {
			valid = true
			break
		}
	}
	if !valid {
		p.Mode = requestedMode
	}
	return p
}

// Fallback is the deterministic plan used when the model reply is unusable.
func Fallback(chosenMode, userText string) Plan {
	reflection := "I'm hearing this feels tough."
	if t := strings.TrimSpace(userText); t != "" {
		reflection = "I'm hearing that " + t
	}
	return Plan{
		Mode:       chosenMode,
		Reflection: reflection,
		Core:       "",
		Question:   "What part feels most important to focus on right now?",
		Tagline:    "",
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
