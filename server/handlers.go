package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/richinex/slidesmith/deck"
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/outline"
	"github.com/richinex/slidesmith/pptx"
	"github.com/richinex/slidesmith/storage"
)

const (
	pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	downloadName    = "presentation_generee.pptx"
	maxRequestBytes = 1 << 20
	outlineIDHeader = "X-Outline-ID"
)

// Generator produces an outline for a topic or source text.
type Generator interface {
	Generate(ctx context.Context, topic string) outline.Generation
}

// Handler serves the deck API.
type Handler struct {
	gen      Generator
	renderer *deck.Renderer
	template func() *pptx.Presentation
	history  storage.HistoryStore
	tempDir  string
	log      *logger.Logger
}

// Deps are the collaborators of a Handler. Template must return a fresh
// presentation on every call. History may be nil, in which case outlines
// are not recorded and lookups always miss.
type Deps struct {
	Generator Generator
	Renderer  *deck.Renderer
	Template  func() *pptx.Presentation
	History   storage.HistoryStore
	TempDir   string
	Logger    *logger.Logger
}

// NewHandler wires a Handler from its dependencies.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		gen:      d.Generator,
		renderer: d.Renderer,
		template: d.Template,
		history:  d.History,
		tempDir:  d.TempDir,
		log:      d.Logger,
	}
	if h.log == nil {
		h.log = logger.Nop()
	}
	if h.template == nil {
		h.template = pptx.NewDefault
	}
	if h.renderer == nil {
		h.renderer = deck.NewRenderer(deck.DefaultLayoutMap(), h.log)
	}
	if h.tempDir == "" {
		h.tempDir = os.TempDir()
	}
	return h
}

type createDeckRequest struct {
	Content string `json:"content"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	ID     string `json:"id,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateDeck generates an outline, renders it and streams the .pptx back.
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	content, err := readContent(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Detail: err.Error()})
		return
	}
	if strings.TrimSpace(content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	gen := h.gen.Generate(ctx, content)
	id := h.record(ctx, content, gen)

	if gen.Outline.IsError() {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:  "outline generation failed",
			Detail: gen.Outline.Subtitle,
			ID:     id,
		})
		return
	}

	out := filepath.Join(h.tempDir, "deck-"+uuid.NewString()+".pptx")
	defer os.Remove(out)

	report, err := h.renderer.Render(gen.Outline, h.template(), out)
	if err != nil {
		h.log.Error("render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "render failed", ID: id})
		return
	}

	f, err := os.Open(report.Path)
	if err != nil {
		h.log.Error("open rendered deck", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "render failed", ID: id})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	if id != "" {
		w.Header().Set(outlineIDHeader, id)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		h.log.Warn("stream deck", "error", err)
	}
}

// GetOutline returns a stored outline record.
func (h *Handler) GetOutline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "outline not found", ID: id})
		return
	}

	rec, err := h.history.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "outline not found", ID: id})
		return
	}
	if err != nil {
		h.log.Error("load outline", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// record stores the generation and returns its id, or "" when history is
// disabled or the write failed.
func (h *Handler) record(ctx context.Context, input string, gen outline.Generation) string {
	if h.history == nil {
		return ""
	}
	rec, err := h.history.Save(ctx, storage.NewRecord(input, gen))
	if err != nil {
		h.log.Warn("record outline", "error", err)
		return ""
	}
	return rec.ID
}

func readContent(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req createDeckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", fmt.Errorf("decode JSON body: %w", err)
		}
		return req.Content, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("parse form: %w", err)
	}
	return r.FormValue("content"), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
