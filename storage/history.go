// Package storage keeps a history of generated outlines.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Record identity and timestamp assignment
// - Serialization of outlines for persistence

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/slidesmith/outline"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("outline record not found")
	// ErrAmbiguousID is returned when an id prefix matches several records.
	ErrAmbiguousID = errors.New("outline id prefix is ambiguous")
)

// Record is one outline request and its result.
type Record struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Input     string          `json:"input"`
	Provider  string          `json:"provider,omitempty"`
	Model     string          `json:"model,omitempty"`
	Outline   outline.Outline `json:"outline"`
	Raw       string          `json:"raw,omitempty"`
}

// NewRecord captures a generation for storage.
func NewRecord(input string, gen outline.Generation) Record {
	return Record{
		Input:    input,
		Provider: gen.Provider,
		Model:    gen.Model,
		Outline:  gen.Outline,
		Raw:      gen.Raw,
	}
}

// HistoryStore persists outline records.
type HistoryStore interface {
	// Save stores a record, assigning ID and CreatedAt when they are unset,
	// and returns the stored record.
	Save(ctx context.Context, rec Record) (Record, error)

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// List returns records newest first. A limit of zero or less means all.
	List(ctx context.Context, limit int) ([]Record, error)

	// Resolve expands an id prefix to the full id. An exact id always
	// resolves to itself; otherwise the prefix must match exactly one
	// record.
	Resolve(ctx context.Context, prefix string) (string, error)
}

// pickMatch applies the Resolve rules to the ids found for prefix.
func pickMatch(prefix string, ids []string) (string, error) {
	switch {
	case len(ids) == 0:
		return "", ErrNotFound
	case len(ids) == 1 || ids[0] == prefix:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

func stamp(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}
