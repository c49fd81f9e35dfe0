package outline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/richinex/slidesmith/llm"
)

// scriptedProvider answers every request with a fixed response.
type scriptedProvider struct {
	content string
	err     error
	calls   int
	format  *llm.ResponseFormat
	sent    []llm.ChatMessage
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	return p.ChatWithFormat(ctx, messages, nil)
}

func (p *scriptedProvider) ChatWithFormat(_ context.Context, messages []llm.ChatMessage, format *llm.ResponseFormat) (llm.LLMResponse, error) {
	p.calls++
	p.format = format
	p.sent = messages
	if p.err != nil {
		return llm.LLMResponse{}, p.err
	}
	return llm.LLMResponse{Content: p.content}, nil
}

// forbiddenProvider fails the test if the requester reaches the network.
type forbiddenProvider struct{ t *testing.T }

func (p forbiddenProvider) Name() string  { return "forbidden" }
func (p forbiddenProvider) Model() string { return "none" }

func (p forbiddenProvider) Chat(context.Context, []llm.ChatMessage) (llm.LLMResponse, error) {
	p.t.Fatal("provider must not be called")
	return llm.LLMResponse{}, nil
}

func (p forbiddenProvider) ChatWithFormat(context.Context, []llm.ChatMessage, *llm.ResponseFormat) (llm.LLMResponse, error) {
	p.t.Fatal("provider must not be called")
	return llm.LLMResponse{}, nil
}

var testKey = Credential{Name: "GEMINI_API_KEY", Value: "k"}

func TestRequestOutlineMissingCredential(t *testing.T) {
	r := NewRequester(forbiddenProvider{t}, Credential{Name: "GEMINI_API_KEY"}, nil)
	o := r.RequestOutline(context.Background(), "Solar power")
	if !o.IsError() {
		t.Fatalf("expected error outline, got %+v", o)
	}
	if !strings.Contains(o.Subtitle, "API Key Missing") || !strings.Contains(o.Subtitle, "GEMINI_API_KEY") {
		t.Errorf("unexpected diagnostic %q", o.Subtitle)
	}
	if len(o.Slides) != 0 {
		t.Errorf("expected no slides, got %d", len(o.Slides))
	}
}

func TestRequestOutlineNilProvider(t *testing.T) {
	r := NewRequester(nil, testKey, nil)
	if o := r.RequestOutline(context.Background(), "x"); !o.IsError() {
		t.Errorf("expected error outline without a provider, got %+v", o)
	}
}

func TestGenerateSuccess(t *testing.T) {
	p := &scriptedProvider{content: "Here you go:\n```json\n{\"presentation_title\": \"Solar\", \"subtitle\": \"Now\", \"slides\": [{\"title\": \"Intro\", \"content\": \"Sun\"}]}\n```"}
	r := NewRequester(p, testKey, nil)

	gen := r.Generate(context.Background(), "  Solar power  ")
	o := gen.Outline
	if o.IsError() {
		t.Fatalf("unexpected error outline: %s", o.Subtitle)
	}
	if o.Title != "Solar" || len(o.Slides) != 1 || o.Slides[0].Content[0] != "Sun" {
		t.Errorf("unexpected outline %+v", o)
	}
	if o.Mode != ModeCreative {
		t.Errorf("expected creative mode, got %q", o.Mode)
	}
	if o.SourceText != "  Solar power  " {
		t.Errorf("expected source text to be kept verbatim, got %q", o.SourceText)
	}
	if gen.Provider != "scripted" || gen.Model != "scripted-1" || gen.Raw != p.content {
		t.Errorf("unexpected generation metadata %+v", gen)
	}
	if p.calls != 1 {
		t.Errorf("expected a single attempt, got %d", p.calls)
	}
	if !p.format.WantsJSON() {
		t.Error("expected a JSON response format")
	}
}

func TestGenerateStrictPrompt(t *testing.T) {
	p := &scriptedProvider{content: `{"presentation_title": "Report", "slides": []}`}
	r := NewRequester(p, testKey, nil)
	source := strings.Repeat("Quarterly results were strong. ", 10)

	o := r.RequestOutline(context.Background(), source)
	if o.Mode != ModeStrict {
		t.Errorf("expected strict mode, got %q", o.Mode)
	}
	if len(p.sent) != 2 || !strings.Contains(p.sent[1].Content, "Extract the content exactly") {
		t.Errorf("expected strict instructions, got %+v", p.sent)
	}
	if !strings.Contains(p.sent[1].Content, `"presentation_title"`) {
		t.Error("expected the JSON shape in the prompt")
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *scriptedProvider
		diag     string
	}{
		{"transport error", &scriptedProvider{err: errors.New("quota exceeded")}, "quota exceeded"},
		{"empty response", &scriptedProvider{content: "   "}, "empty response"},
		{"unparseable", &scriptedProvider{content: "I cannot help with that"}, "failed to unmarshal"},
		{"array payload", &scriptedProvider{content: `[1, 2]`}, "failed to unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRequester(tt.provider, testKey, nil)
			o := r.RequestOutline(context.Background(), "topic")
			if !o.IsError() {
				t.Fatalf("expected error outline, got %+v", o)
			}
			if !strings.Contains(o.Subtitle, tt.diag) {
				t.Errorf("expected diagnostic containing %q, got %q", tt.diag, o.Subtitle)
			}
			if o.Slides == nil || len(o.Slides) != 0 {
				t.Errorf("expected empty slides, got %#v", o.Slides)
			}
		})
	}
}

func TestBuildPromptModes(t *testing.T) {
	creative := BuildPrompt("Bees", ModeCreative)
	if !strings.Contains(creative[0].Content, "Presentation Creator") || !strings.Contains(creative[1].Content, `"Bees"`) {
		t.Errorf("unexpected creative prompt %+v", creative)
	}
	strict := BuildPrompt("Bees", ModeStrict)
	if !strings.Contains(strict[0].Content, "Data Extractor") {
		t.Errorf("unexpected strict prompt %+v", strict)
	}
}
