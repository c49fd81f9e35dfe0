package outline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jsonutil "github.com/richinex/slidesmith/internal/json"
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/llm"
)

// MissingCredentialDiagnostic prefixes the subtitle of an outline
// produced without a configured API key.
const MissingCredentialDiagnostic = "API Key Missing"

var errEmptyResponse = errors.New("empty response from model")

// Credential is the API key handed to the requester by the shell. Name is
// the environment variable it came from and only appears in diagnostics.
type Credential struct {
	Name  string
	Value string
}

// Generation is the outcome of one outline request, including the raw
// model text for history records.
type Generation struct {
	Outline  Outline
	Raw      string
	Provider string
	Model    string
}

// Requester asks a model for a slide outline. It makes a single attempt
// per call and never returns an error: every failure becomes an error
// outline.
type Requester struct {
	provider   llm.Provider
	credential Credential
	log        *logger.Logger
}

// NewRequester wires a provider and its credential. A nil logger is
// replaced by a no-op one.
func NewRequester(provider llm.Provider, credential Credential, log *logger.Logger) *Requester {
	if log == nil {
		log = logger.Nop()
	}
	return &Requester{provider: provider, credential: credential, log: log}
}

// RequestOutline returns the outline for a topic or source text.
func (r *Requester) RequestOutline(ctx context.Context, topic string) Outline {
	return r.Generate(ctx, topic).Outline
}

// Generate is RequestOutline plus the raw response and model identity.
func (r *Requester) Generate(ctx context.Context, topic string) Generation {
	if strings.TrimSpace(r.credential.Value) == "" || r.provider == nil {
		diag := MissingCredentialDiagnostic
		if r.credential.Name != "" {
			diag = fmt.Sprintf("%s: set %s", MissingCredentialDiagnostic, r.credential.Name)
		}
		r.log.Warn("outline request skipped", "reason", diag)
		return Generation{Outline: ErrorOutline(diag)}
	}

	gen := Generation{Provider: r.provider.Name(), Model: r.provider.Model()}
	mode := ClassifyMode(topic)
	r.log.Info("requesting outline", "provider", gen.Provider, "model", gen.Model, "mode", mode)

	resp, err := r.provider.ChatWithFormat(ctx, BuildPrompt(topic, mode), llm.NewJSONObjectFormat())
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = errEmptyResponse
	}
	if err != nil {
		r.log.Error("outline request failed", "error", err)
		gen.Outline = ErrorOutline(err.Error())
		return gen
	}
	gen.Raw = resp.Content

	o, err := jsonutil.ExtractJSONFromResponse[Outline](resp.Content)
	if err != nil {
		r.log.Error("outline response rejected", "error", err)
		gen.Outline = ErrorOutline(err.Error())
		return gen
	}
	o.SourceText = topic
	o.Mode = mode
	gen.Outline = o

	r.log.Info("outline received", "title", o.Title, "slides", len(o.Slides))
	return gen
}
