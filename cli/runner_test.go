package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richinex/slidesmith/config"
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/outline"
	"github.com/richinex/slidesmith/pptx"
	"github.com/richinex/slidesmith/storage"
)

const sampleOutline = `{
  "presentation_title": "Bees",
  "subtitle": "A short tour",
  "slides": [
    {"title": "1. Hive", "content": ["Queen", "Workers"]},
    {"title": "Honey", "content": "Nectar"}
  ]
}`

// testEnv points every deck location into a temp dir and clears the
// default provider's key.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DECK_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DECK_TEMPLATE", filepath.Join(dir, "missing.pptx"))
	t.Setenv("DECK_OUTPUT", filepath.Join(dir, "out.pptx"))
	t.Setenv("DECK_HISTORY_DB", filepath.Join(dir, "history.db"))
	t.Setenv("DECK_LAYOUTS", "")
	return dir
}

func testOptions() (Options, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return Options{Out: &out, ErrOut: &errOut}, &out, &errOut
}

func TestGenerateWithoutCredential(t *testing.T) {
	dir := testEnv(t)
	opts, _, errOut := testOptions()

	err := Generate(context.Background(), "Bees", DeckOptions{}, opts)
	if err == nil {
		t.Fatal("expected an error without an API key")
	}
	if !strings.Contains(errOut.String(), "API Key Missing: set GEMINI_API_KEY") {
		t.Errorf("expected diagnostic on stderr, got %q", errOut.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out.pptx")); !os.IsNotExist(err) {
		t.Error("no deck should be written for an error outline")
	}

	listOpts, out, _ := testOptions()
	if err := HistoryList(context.Background(), 10, listOpts); err != nil {
		t.Fatalf("HistoryList failed: %v", err)
	}
	if !strings.Contains(out.String(), "error") || !strings.Contains(out.String(), "Bees") {
		t.Errorf("expected the failed request in history, got %q", out.String())
	}
}

func TestOutlineWithoutCredentialPrintsErrorOutline(t *testing.T) {
	testEnv(t)
	opts, out, _ := testOptions()

	if err := Outline(context.Background(), "Bees", opts); err == nil {
		t.Fatal("expected an error without an API key")
	}
	if !strings.Contains(out.String(), `"presentation_title": "Error"`) {
		t.Errorf("expected error outline JSON, got %q", out.String())
	}
}

func TestRenderFromOutlineFile(t *testing.T) {
	dir := testEnv(t)
	path := filepath.Join(dir, "outline.json")
	if err := os.WriteFile(path, []byte(sampleOutline), 0644); err != nil {
		t.Fatal(err)
	}
	opts, out, errOut := testOptions()
	target := filepath.Join(dir, "decks", "bees.pptx")

	if err := Render(context.Background(), RenderSource{OutlinePath: path}, DeckOptions{Output: target}, opts); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out.String(), "Presentation saved to "+target) {
		t.Errorf("unexpected output %q", out.String())
	}
	if !strings.Contains(errOut.String(), "blank template") {
		t.Errorf("expected blank template warning, got %q", errOut.String())
	}

	pres, err := pptx.Open(target)
	if err != nil {
		t.Fatalf("rendered deck does not open: %v", err)
	}
	// cover, plan, two section/content pairs, closing
	if pres.SlideCount() != 7 {
		t.Errorf("expected 7 slides, got %d", pres.SlideCount())
	}
}

func TestRenderFromHistory(t *testing.T) {
	dir := testEnv(t)
	store, err := storage.OpenSqlite(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}
	o := outline.Outline{
		Title:  "Stored",
		Slides: []outline.SlideSpec{{Title: "Only", Content: []string{"one"}}},
	}
	rec, err := store.Save(context.Background(), storage.NewRecord("Stored", outline.Generation{Outline: o}))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	opts, _, _ := testOptions()
	if err := Render(context.Background(), RenderSource{HistoryID: rec.ID}, DeckOptions{}, opts); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	pres, err := pptx.Open(filepath.Join(dir, "out.pptx"))
	if err != nil {
		t.Fatalf("rendered deck does not open: %v", err)
	}
	if pres.SlideCount() != 5 {
		t.Errorf("expected 5 slides, got %d", pres.SlideCount())
	}
}

func TestRenderRequiresOneSource(t *testing.T) {
	testEnv(t)
	opts, _, _ := testOptions()
	if err := Render(context.Background(), RenderSource{}, DeckOptions{}, opts); err == nil {
		t.Error("expected error with no source")
	}
	both := RenderSource{OutlinePath: "a.json", HistoryID: "x"}
	if err := Render(context.Background(), both, DeckOptions{}, opts); err == nil {
		t.Error("expected error with two sources")
	}
}

func TestRenderRejectsErrorOutline(t *testing.T) {
	dir := testEnv(t)
	path := filepath.Join(dir, "error.json")
	os.WriteFile(path, []byte(`{"presentation_title": "Error", "subtitle": "boom"}`), 0644)
	opts, _, _ := testOptions()

	err := Render(context.Background(), RenderSource{OutlinePath: path}, DeckOptions{}, opts)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected error outline rejection, got %v", err)
	}
}

func TestHistoryShow(t *testing.T) {
	dir := testEnv(t)
	store, err := storage.OpenSqlite(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}
	rec, _ := store.Save(context.Background(), storage.NewRecord("Bees", outline.Generation{Outline: outline.Outline{Title: "Bees"}}))
	store.Close()

	opts, out, _ := testOptions()
	if err := HistoryShow(context.Background(), rec.ID, opts); err != nil {
		t.Fatalf("HistoryShow failed: %v", err)
	}
	if !strings.Contains(out.String(), rec.ID) || !strings.Contains(out.String(), `"presentation_title": "Bees"`) {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := HistoryShow(context.Background(), rec.ID[:8], opts); err != nil {
		t.Fatalf("HistoryShow by prefix failed: %v", err)
	}
	if !strings.Contains(out.String(), rec.ID) {
		t.Errorf("expected prefix to resolve to %s, got %q", rec.ID, out.String())
	}

	if err := HistoryShow(context.Background(), "unknown", opts); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestHistoryListEmpty(t *testing.T) {
	testEnv(t)
	opts, out, _ := testOptions()
	if err := HistoryList(context.Background(), 0, opts); err != nil {
		t.Fatalf("HistoryList failed: %v", err)
	}
	if !strings.Contains(out.String(), "No outlines recorded.") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestCreateProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	settings, err := config.New("gpt")
	if err != nil {
		t.Fatalf("config.New failed: %v", err)
	}
	provider, cred, err := createProvider(settings)
	if err != nil {
		t.Fatalf("createProvider failed: %v", err)
	}
	if provider == nil || provider.Name() != "openai" {
		t.Errorf("expected openai provider, got %v", provider)
	}
	if cred.Name != "OPENAI_API_KEY" || cred.Value != "sk-test" {
		t.Errorf("unexpected credential %+v", cred)
	}

	t.Setenv("OPENAI_API_KEY", "")
	provider, cred, err = createProvider(settings)
	if err != nil || provider != nil || cred.Value != "" || cred.Name != "OPENAI_API_KEY" {
		t.Errorf("expected missing credential without error, got %v %+v %v", provider, cred, err)
	}
}

func TestReadInput(t *testing.T) {
	if got, err := ReadInput([]string{"honey", "bees"}, ""); err != nil || got != "honey bees" {
		t.Errorf("unexpected input %q, %v", got, err)
	}
	if _, err := ReadInput(nil, ""); err == nil {
		t.Error("expected error for empty input")
	}

	path := filepath.Join(t.TempDir(), "source.txt")
	os.WriteFile(path, []byte("Sommaire: A, B\nA\nB"), 0644)
	if got, err := ReadInput([]string{"ignored"}, path); err != nil || !strings.HasPrefix(got, "Sommaire") {
		t.Errorf("expected file contents, got %q, %v", got, err)
	}
	if _, err := ReadInput(nil, filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncateString("a  b\nc", 10); got != "a b c" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
	if got := truncateString(strings.Repeat("x", 20), 10); got != "xxxxxxx..." {
		t.Errorf("unexpected %q", got)
	}
}

func TestServerKeepsHistoryInMemoryWithoutDatabase(t *testing.T) {
	dir := testEnv(t)
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DECK_HISTORY_DB", filepath.Join(blocker, "history.db"))

	settings, err := config.New("")
	if err != nil {
		t.Fatalf("config.New failed: %v", err)
	}
	history, closeHistory := serveHistory(settings, logger.Nop())
	if _, ok := history.(*storage.InMemoryHistory); !ok {
		t.Fatalf("expected in-memory fallback, got %T", history)
	}
	closeHistory()

	handler, closeHandler, err := newServerHandler(settings, settings.Deck, logger.Nop())
	if err != nil {
		t.Fatalf("newServerHandler failed: %v", err)
	}
	defer closeHandler()
	srv := httptest.NewServer(handler)
	defer srv.Close()

	// No API key is set, so generation fails but is still recorded.
	resp, err := http.PostForm(srv.URL+"/api/decks", url.Values{"content": {"Bees"}})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var body struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway || body.ID == "" {
		t.Fatalf("expected 502 with an outline id, got %d %+v", resp.StatusCode, body)
	}

	got, err := http.Get(srv.URL + "/api/outlines/" + body.ID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer got.Body.Close()
	var rec storage.Record
	if err := json.NewDecoder(got.Body).Decode(&rec); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.StatusCode != http.StatusOK || rec.Input != "Bees" || !rec.Outline.IsError() {
		t.Errorf("expected the failed request from memory, got %d %+v", got.StatusCode, rec)
	}
}
