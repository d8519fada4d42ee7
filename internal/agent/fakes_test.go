package agent

import (
	"context"

	"github.com/rohankhatri7/AURA/internal/llm"
	"github.com/rohankhatri7/AURA/internal/session"
	"github.com/rohankhatri7/AURA/internal/transcribe"
)

type fakeSink struct {
	partials []string
	metas    []Meta
	tokens   []string
	finals   []Final
}

func (s *fakeSink) PartialTranscript(text string) error { s.partials = append(s.partials, text); return nil }
func (s *fakeSink) Meta(m Meta) error                   { s.metas = append(s.metas, m); return nil }
func (s *fakeSink) Token(delta string) error            { s.tokens = append(s.tokens, delta); return nil }
func (s *fakeSink) Final(f Final) error                 { s.finals = append(s.finals, f); return nil }

func (s *fakeSink) joinedTokens() string {
	out := ""
	for _, t := range s.tokens {
		out += t
	}
	return out
}

type fakeConverter struct {
	err   error
	calls int
}

func (c *fakeConverter) ToWav16kMono(ctx context.Context, src, dst string) error {
	c.calls++
	return c.err
}

type fakeTranscriber struct {
	texts []string
	err   error
	calls int
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, wavPath string) ([]transcribe.Segment, error) {
	i := t.calls
	t.calls++
	if t.err != nil {
		return nil, t.err
	}
	if len(t.texts) == 0 {
		return nil, nil
	}
	if i >= len(t.texts) {
		i = len(t.texts) - 1
	}
	if t.texts[i] == "" {
		return nil, nil
	}
	return []transcribe.Segment{{Text: t.texts[i]}}, nil
}

type fakeIntent struct {
	label string
	err   error
	calls int
}

func (c *fakeIntent) Classify(ctx context.Context, text string) (string, error) {
	c.calls++
	return c.label, c.err
}

type fakeEmotion struct {
	label string
	err   error
}

func (c *fakeEmotion) Detect(ctx context.Context, text string) (string, error) {
	return c.label, c.err
}

type fakePlanner struct {
	plan          llm.Plan
	err           error
	calls         int
	gotHistory    []session.Turn
	gotDisallowed []string
	gotMode       string
}

func (p *fakePlanner) Plan(ctx context.Context, history []session.Turn, userText, intent, emotion, chosenMode string, disallowedOpeners []string) (llm.Plan, error) {
	p.calls++
	p.gotHistory = history
	p.gotDisallowed = disallowedOpeners
	p.gotMode = chosenMode
	if p.err != nil {
		return llm.Plan{}, p.err
	}
	return p.plan, nil
}

type fakeSynth struct {
	err   error
	ext   string
	texts []string
	paths []string
}

func (s *fakeSynth) FileExt() string {
	if s.ext == "" {
		return "mp3"
	}
	return s.ext
}

func (s *fakeSynth) Synthesize(ctx context.Context, text, outPath string) error {
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	s.paths = append(s.paths, outPath)
	return nil
}
