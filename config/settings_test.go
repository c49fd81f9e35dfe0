package config

import (
	"os"
	"reflect"
	"testing"

	"github.com/richinex/slidesmith/llm"
)

func TestNewDefaultsToGemini(t *testing.T) {
	t.Setenv("DECK_PROVIDER", "")
	t.Setenv("GEMINI_MODEL", "")
	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "gemini" {
		t.Errorf("expected provider 'gemini', got %q", settings.LLM.Provider)
	}
	if settings.LLM.Model != "gemini-1.5-flash" {
		t.Errorf("expected default Gemini model, got %q", settings.LLM.Model)
	}
}

func TestNewProviderFromEnv(t *testing.T) {
	t.Setenv("DECK_PROVIDER", "claude")
	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic', got %q", settings.LLM.Provider)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("google")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "gemini" {
		t.Errorf("expected provider 'gemini' (normalized from 'google'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewDeckDefaults(t *testing.T) {
	for _, key := range []string{"DECK_TEMPLATE", "DECK_OUTPUT", "DECK_LAYOUTS", "DECK_HISTORY_DB", "DECK_SERVER_ADDR", "LOG_MODE"} {
		t.Setenv(key, "")
	}
	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DeckConfig{
		TemplatePath: "my_brand_template.pptx",
		OutputPath:   "/tmp/output_presentation.pptx",
		HistoryPath:  ".slidesmith/history.db",
		ServerAddr:   ":8080",
	}
	if !reflect.DeepEqual(settings.Deck, want) {
		t.Errorf("unexpected deck settings %+v", settings.Deck)
	}
	if settings.Log.Mode != "dev" {
		t.Errorf("expected dev log mode, got %q", settings.Log.Mode)
	}
}

func TestNewDeckOverrides(t *testing.T) {
	t.Setenv("DECK_TEMPLATE", "brand.pptx")
	t.Setenv("DECK_SERVER_ADDR", "127.0.0.1:9000")
	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Deck.TemplatePath != "brand.pptx" || settings.Deck.ServerAddr != "127.0.0.1:9000" {
		t.Errorf("overrides not applied: %+v", settings.Deck)
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	original := os.Getenv("GEMINI_API_KEY")
	os.Setenv("GEMINI_API_KEY", "test-key")
	defer os.Setenv("GEMINI_API_KEY", original)

	key, err := APIKeyFor("google")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	_, err := APIKeyFor("unknown")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestAPIKeyEnvFor(t *testing.T) {
	name, err := APIKeyEnvFor("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "GEMINI_API_KEY" {
		t.Errorf("expected GEMINI_API_KEY, got %q", name)
	}
}

func TestModelFor(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-test")
	model, err := ModelFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "gpt-test" {
		t.Errorf("expected model from environment, got %q", model)
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestNewWithInvalidTemperature(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "warm")

	if _, err := New("gemini"); err == nil {
		t.Error("expected error for invalid LLM_TEMPERATURE")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestSupportedProviders(t *testing.T) {
	want := []string{"anthropic", "deepseek", "gemini", "openai"}
	if got := SupportedProviders(); !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedProviders() = %v, want %v", got, want)
	}
}

func TestDefaultModelsMatchProviderDefaults(t *testing.T) {
	for _, name := range SupportedProviders() {
		t.Run(name, func(t *testing.T) {
			envVar := providers[name].modelEnv
			t.Setenv(envVar, "")
			model, err := ModelFor(name)
			if err != nil {
				t.Fatalf("ModelFor failed: %v", err)
			}
			pt, err := llm.ParseProviderType(name)
			if err != nil {
				t.Fatalf("ParseProviderType failed: %v", err)
			}
			if model != pt.DefaultModel() {
				t.Errorf("config default %q differs from provider default %q", model, pt.DefaultModel())
			}
		})
	}
}
