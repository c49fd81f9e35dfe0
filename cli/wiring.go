// Collaborator construction for CLI commands.
//
// Information Hiding:
// - Provider and credential resolution hidden
// - Logger, history and layout map setup hidden

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/richinex/slidesmith/config"
	"github.com/richinex/slidesmith/deck"
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/llm"
	"github.com/richinex/slidesmith/outline"
	"github.com/richinex/slidesmith/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Verbose  bool

	// Out and ErrOut default to os.Stdout and os.Stderr.
	Out    io.Writer
	ErrOut io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) stderr() io.Writer {
	if o.ErrOut == nil {
		return os.Stderr
	}
	return o.ErrOut
}

// DeckOptions override the deck locations from the environment.
type DeckOptions struct {
	Output   string
	Template string
	Layouts  string
}

func (d DeckOptions) apply(s config.DeckConfig) config.DeckConfig {
	if d.Output != "" {
		s.OutputPath = d.Output
	}
	if d.Template != "" {
		s.TemplatePath = d.Template
	}
	if d.Layouts != "" {
		s.LayoutsPath = d.Layouts
	}
	return s
}

// newLogger keeps logs quiet unless --verbose is set.
func newLogger(settings config.Settings, verbose bool) (*logger.Logger, error) {
	if !verbose {
		return logger.Nop(), nil
	}
	log, err := logger.New(settings.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// createProvider builds the configured provider. A missing API key is not
// an error here: the requester turns it into an error outline.
func createProvider(settings config.Settings) (llm.Provider, outline.Credential, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, outline.Credential{}, err
	}

	envVar, err := config.APIKeyEnvFor(settings.LLM.Provider)
	if err != nil {
		return nil, outline.Credential{}, err
	}
	cred := outline.Credential{Name: envVar}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, cred, nil
	}
	cred.Value = apiKey

	provider, err := providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
	if err != nil {
		return nil, cred, err
	}
	return provider, cred, nil
}

func newRequester(settings config.Settings, log *logger.Logger) (*outline.Requester, error) {
	provider, cred, err := createProvider(settings)
	if err != nil {
		return nil, err
	}
	return outline.NewRequester(provider, cred, log), nil
}

func openHistory(settings config.Settings) (*storage.SqliteHistory, error) {
	if settings.Deck.HistoryPath == "" {
		return nil, fmt.Errorf("history database path is empty (set DECK_HISTORY_DB)")
	}
	store, err := storage.OpenSqlite(settings.Deck.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// serveHistory opens the history database for the server. When it cannot
// be opened the server keeps outlines in memory for its lifetime.
func serveHistory(settings config.Settings, log *logger.Logger) (storage.HistoryStore, func() error) {
	store, err := openHistory(settings)
	if err != nil {
		log.Warn("history database unavailable, keeping outlines in memory", "error", err)
		return storage.NewInMemoryHistory(), func() error { return nil }
	}
	return store, store.Close
}

func newRenderer(deckCfg config.DeckConfig, log *logger.Logger) (*deck.Renderer, error) {
	layouts, err := config.LoadLayouts(deckCfg.LayoutsPath)
	if err != nil {
		return nil, err
	}
	return deck.NewRenderer(layouts, log), nil
}
