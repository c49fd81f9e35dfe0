package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "test-model",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\": true}"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10}
}`

// TestCompatibleProviderSendsJSONFormat verifies the request carries the JSON response format
func TestCompatibleProviderSendsJSONFormat(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody)
	}))
	defer srv.Close()

	provider := newCompatibleProvider("test", srv.URL, "sk-test", "test-model", 100, 0.2)
	resp, err := provider.ChatWithFormat(context.Background(), []ChatMessage{
		SystemMessage("be brief"),
		UserMessage("hello"),
	}, NewJSONObjectFormat())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Content != `{"ok": true}` {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 10 {
		t.Errorf("expected usage total 10, got %+v", resp.Usage)
	}
	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", captured["response_format"])
	}
	if msgs, _ := captured["messages"].([]any); len(msgs) != 2 {
		t.Errorf("expected 2 messages, got %v", captured["messages"])
	}
}

// TestCompatibleProviderErrorNoAPIKeyLeak verifies errors don't contain API keys
func TestCompatibleProviderErrorNoAPIKeyLeak(t *testing.T) {
	testKey := "sk-test-invalid-key-12345xyz"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	provider := newCompatibleProvider("test", srv.URL, testKey, "test-model", 100, 0.7)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := provider.Chat(ctx, []ChatMessage{UserMessage("test")})
	if err == nil {
		t.Fatal("expected an error for a rejected key")
	}

	errStr := err.Error()
	if strings.Contains(errStr, testKey) {
		t.Errorf("error message leaked API key: %v", errStr)
	}
	if strings.Contains(errStr, "Authorization:") {
		t.Errorf("error exposed Authorization header: %v", errStr)
	}
}

func TestDeepSeekProviderIdentity(t *testing.T) {
	provider := NewDeepSeekProvider("sk-test", ModelDeepSeekChat, 100, 0.7)
	if provider.Name() != "deepseek" || provider.Model() != ModelDeepSeekChat {
		t.Errorf("unexpected identity %s/%s", provider.Name(), provider.Model())
	}
}

// TestGeminiInitErrorPreserved verifies Gemini returns initialization errors
func TestGeminiInitErrorPreserved(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	provider := NewGeminiProvider("", ModelGeminiFlash15, 100, 0.7)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := provider.Chat(ctx, []ChatMessage{UserMessage("test")})
	if err == nil {
		t.Fatal("Expected initialization error to be returned, got nil")
	}
	if !strings.Contains(err.Error(), "failed to initialize") {
		t.Errorf("Expected initialization error, got: %v", err)
	}
}

func TestGeminiGenerateConfig(t *testing.T) {
	p := &GeminiProvider{model: ModelGeminiFlash15, maxTokens: 256, temperature: 0.3}

	cfg := p.generateConfig("system text", NewJSONObjectFormat())
	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("expected JSON MIME type, got %q", cfg.ResponseMIMEType)
	}
	if cfg.SystemInstruction == nil {
		t.Error("expected system instruction to be set")
	}
	if cfg.MaxOutputTokens != 256 || cfg.Temperature == nil || *cfg.Temperature != 0.3 {
		t.Errorf("unexpected sampling settings: %+v", cfg)
	}

	plain := p.generateConfig("", nil)
	if plain.ResponseMIMEType != "" {
		t.Errorf("expected no MIME type for plain chat, got %q", plain.ResponseMIMEType)
	}
	if plain.SystemInstruction != nil {
		t.Error("expected no system instruction")
	}
}

func TestConvertToGeminiMessages(t *testing.T) {
	contents, system := convertToGeminiMessages([]ChatMessage{
		SystemMessage("rules"),
		UserMessage("question"),
		AssistantMessage("answer"),
	})
	if system != "rules" {
		t.Errorf("expected system instruction 'rules', got %q", system)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != genai.RoleUser || contents[1].Role != genai.RoleModel {
		t.Errorf("unexpected roles %s, %s", contents[0].Role, contents[1].Role)
	}
}

func TestWantsJSON(t *testing.T) {
	var none *ResponseFormat
	if none.WantsJSON() {
		t.Error("nil format should not want JSON")
	}
	if (&ResponseFormat{Type: ResponseFormatText}).WantsJSON() {
		t.Error("text format should not want JSON")
	}
	if !NewJSONObjectFormat().WantsJSON() {
		t.Error("JSON object format should want JSON")
	}
}

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		in   string
		want ProviderType
	}{
		{"gemini", ProviderGemini},
		{"Google", ProviderGemini},
		{"claude", ProviderAnthropic},
		{"gpt", ProviderOpenAI},
		{"deepseek", ProviderDeepSeek},
	}
	for _, tt := range tests {
		got, err := ParseProviderType(tt.in)
		if err != nil {
			t.Errorf("ParseProviderType(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProviderType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseProviderType("mystery"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuilderDefaults(t *testing.T) {
	if ProviderGemini.DefaultModel() != "gemini-1.5-flash" {
		t.Errorf("unexpected Gemini default model %q", ProviderGemini.DefaultModel())
	}
	if ProviderGemini.EnvVar() != "GEMINI_API_KEY" {
		t.Errorf("unexpected Gemini env var %q", ProviderGemini.EnvVar())
	}

	p, err := ProviderOpenAI.Model(ModelOpenAIGPT4o).APIKey("sk-test")
	if err != nil {
		t.Fatalf("APIKey failed: %v", err)
	}
	if p.Name() != "openai" || p.Model() != ModelOpenAIGPT4o {
		t.Errorf("unexpected provider %s/%s", p.Name(), p.Model())
	}
}

func TestFromEnvMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := ProviderAnthropic.FromEnv(); err == nil {
		t.Error("expected error when the API key variable is empty")
	}
}
