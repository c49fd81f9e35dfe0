// Command execution for CLI commands.
//
// Information Hiding:
// - Command dispatch logic hidden
// - Outline request, render and history setup hidden
// - Output formatting hidden

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/richinex/slidesmith/config"
	"github.com/richinex/slidesmith/deck"
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/outline"
	"github.com/richinex/slidesmith/pptx"
	"github.com/richinex/slidesmith/server"
	"github.com/richinex/slidesmith/storage"
)

const maxPreviewLen = 60

// ReadInput returns the topic or source text for a command: the contents
// of path when it is set, otherwise the joined arguments.
func ReadInput(args []string, path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	input := strings.Join(args, " ")
	if strings.TrimSpace(input) == "" {
		return "", errors.New("a topic, text or --file is required")
	}
	return input, nil
}

// Generate requests an outline for input, records it and renders the deck.
func Generate(ctx context.Context, input string, d DeckOptions, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	log, err := newLogger(settings, opts.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	requester, err := newRequester(settings, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(opts.stdout(), "Requesting outline from %s (%s)...\n", settings.LLM.Provider, settings.LLM.Model)
	gen := requester.Generate(ctx, input)
	recordGeneration(ctx, settings, input, gen, opts)

	if gen.Outline.IsError() {
		fmt.Fprintf(opts.stderr(), "Error: %s\n", gen.Outline.Subtitle)
		return fmt.Errorf("outline generation failed: %s", gen.Outline.Subtitle)
	}
	return renderOutline(gen.Outline, d.apply(settings.Deck), log, opts)
}

// Outline prints the outline JSON for input without rendering it.
func Outline(ctx context.Context, input string, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	log, err := newLogger(settings, opts.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	requester, err := newRequester(settings, log)
	if err != nil {
		return err
	}

	gen := requester.Generate(ctx, input)
	recordGeneration(ctx, settings, input, gen, opts)

	if err := printJSON(opts.stdout(), gen.Outline); err != nil {
		return err
	}
	if gen.Outline.IsError() {
		return fmt.Errorf("outline generation failed: %s", gen.Outline.Subtitle)
	}
	return nil
}

// RenderSource names where an already generated outline comes from.
// Exactly one field must be set.
type RenderSource struct {
	OutlinePath string
	HistoryID   string
}

// Render renders a stored or hand-written outline without calling a model.
func Render(ctx context.Context, src RenderSource, d DeckOptions, opts Options) error {
	if (src.OutlinePath == "") == (src.HistoryID == "") {
		return errors.New("exactly one of --outline or --history is required")
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	log, err := newLogger(settings, opts.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	var o outline.Outline
	if src.OutlinePath != "" {
		data, err := os.ReadFile(src.OutlinePath)
		if err != nil {
			return fmt.Errorf("failed to read outline: %w", err)
		}
		if err := json.Unmarshal(data, &o); err != nil {
			return fmt.Errorf("failed to parse outline %s: %w", src.OutlinePath, err)
		}
	} else {
		store, err := openHistory(settings)
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := loadRecord(ctx, store, src.HistoryID)
		if err != nil {
			return err
		}
		o = rec.Outline
	}

	if o.IsError() {
		return fmt.Errorf("outline is an error outline: %s", o.Subtitle)
	}
	return renderOutline(o, d.apply(settings.Deck), log, opts)
}

// HistoryList prints the most recent outline records.
func HistoryList(ctx context.Context, limit int, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	store, err := openHistory(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := opts.stdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No outlines recorded.")
		return nil
	}
	for _, rec := range records {
		status := fmt.Sprintf("%d slides", len(rec.Outline.Slides))
		if rec.Outline.IsError() {
			status = "error"
		}
		fmt.Fprintf(out, "%s  %s  %-10s  %s\n",
			rec.ID,
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			status,
			truncateString(rec.Input, maxPreviewLen))
	}
	return nil
}

// HistoryShow prints one stored record as JSON. id may be a unique prefix.
func HistoryShow(ctx context.Context, id string, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	store, err := openHistory(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := loadRecord(ctx, store, id)
	if err != nil {
		return err
	}
	return printJSON(opts.stdout(), rec)
}

// loadRecord fetches a record by full id or unique id prefix.
func loadRecord(ctx context.Context, store storage.HistoryStore, id string) (storage.Record, error) {
	full, err := store.Resolve(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Record{}, fmt.Errorf("no outline with id %s", id)
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to resolve outline id: %w", err)
	}
	rec, err := store.Get(ctx, full)
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to load outline %s: %w", full, err)
	}
	return rec, nil
}

// Serve runs the HTTP front end until ctx is cancelled.
func Serve(ctx context.Context, addr string, d DeckOptions, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = settings.Deck.ServerAddr
	}
	deckCfg := d.apply(settings.Deck)

	log, err := logger.New(settings.Log.Mode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	handler, closeHistory, err := newServerHandler(settings, deckCfg, log)
	if err != nil {
		return err
	}
	defer closeHistory()

	return server.Run(ctx, addr, handler, log)
}

// newServerHandler wires the API router. The returned func releases the
// history store.
func newServerHandler(settings config.Settings, deckCfg config.DeckConfig, log *logger.Logger) (http.Handler, func() error, error) {
	requester, err := newRequester(settings, log)
	if err != nil {
		return nil, nil, err
	}
	renderer, err := newRenderer(deckCfg, log)
	if err != nil {
		return nil, nil, err
	}
	history, closeHistory := serveHistory(settings, log)

	handler := server.NewHandler(server.Deps{
		Generator: requester,
		Renderer:  renderer,
		Template: func() *pptx.Presentation {
			p, _ := deck.LoadTemplate(deckCfg.TemplatePath, log)
			return p
		},
		History: history,
		Logger:  log,
	})
	return server.NewRouter(handler), closeHistory, nil
}

func renderOutline(o outline.Outline, deckCfg config.DeckConfig, log *logger.Logger, opts Options) error {
	renderer, err := newRenderer(deckCfg, log)
	if err != nil {
		return err
	}

	pres, fromFile := deck.LoadTemplate(deckCfg.TemplatePath, log)
	if !fromFile {
		fmt.Fprintf(opts.stderr(), "Warning: template %q not found, using the blank template\n", deckCfg.TemplatePath)
	}

	report, err := renderer.Render(o, pres, deckCfg.OutputPath)
	if err != nil {
		return err
	}

	out := opts.stdout()
	fmt.Fprintf(out, "Presentation saved to %s (%d slides, %d topics)\n", report.Path, report.Slides, report.Groups)
	for _, f := range report.Faults {
		fmt.Fprintf(opts.stderr(), "Warning: %s\n", f.Error())
	}
	return nil
}

// recordGeneration stores the outline in history. Failures only warn.
func recordGeneration(ctx context.Context, settings config.Settings, input string, gen outline.Generation, opts Options) {
	store, err := openHistory(settings)
	if err != nil {
		fmt.Fprintf(opts.stderr(), "Warning: %v\n", err)
		return
	}
	defer store.Close()

	rec, err := store.Save(ctx, storage.NewRecord(input, gen))
	if err != nil {
		fmt.Fprintf(opts.stderr(), "Warning: failed to save history: %v\n", err)
		return
	}
	if opts.Verbose {
		fmt.Fprintf(opts.stdout(), "Outline recorded as %s\n", rec.ID)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
