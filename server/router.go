// Package server exposes the outline-to-deck pipeline over HTTP.
//
// Information Hiding:
// - Request decoding for form and JSON submissions
// - Per-request template copies and temporary output files
// - Mapping of error outlines and storage misses onto status codes
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the http.Handler with middleware and routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	setupCommonMiddleware(r)
	setupRoutes(r, h)

	return r
}

func setupCommonMiddleware(r *chi.Mux) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
}

func setupRoutes(r chi.Router, h *Handler) {
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/decks", h.CreateDeck)
		r.Get("/outlines/{id}", h.GetOutline)
	})
}
