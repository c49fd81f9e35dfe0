// Package outline turns a topic or source text into a slide outline and
// prepares that outline for rendering.
//
// Information Hiding:
// - Prompt wording and the JSON shape requested from the model
// - Coercion of the model's loosely typed payload into typed records
// - Title clean-up, table-of-contents fallback and topic grouping rules
package outline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"
)

// Mode says whether the model invents a deck or extracts one from the input.
type Mode string

const (
	ModeCreative Mode = "creative"
	ModeStrict   Mode = "strict"
)

// CreativeThreshold is the trimmed input length (in characters) below
// which a request is treated as a bare topic.
const CreativeThreshold = 150

const (
	// ErrorTitle marks an outline that stands for a failed request.
	ErrorTitle = "Error"
	// DefaultTitle is used when the model omits presentation_title.
	DefaultTitle = "Untitled Presentation"
)

// ClassifyMode picks the prompting mode from the input length alone.
func ClassifyMode(input string) Mode {
	if utf8.RuneCountInString(strings.TrimSpace(input)) < CreativeThreshold {
		return ModeCreative
	}
	return ModeStrict
}

// Outline is a generation result. It is read-only once built.
type Outline struct {
	Title      string      `json:"presentation_title"`
	Subtitle   string      `json:"subtitle"`
	Slides     []SlideSpec `json:"slides"`
	SourceText string      `json:"original_text,omitempty"`
	Mode       Mode        `json:"mode,omitempty"`
}

// ErrorOutline folds a failure into the outline shape.
func ErrorOutline(diagnostic string) Outline {
	return Outline{Title: ErrorTitle, Subtitle: diagnostic, Slides: []SlideSpec{}}
}

// IsError reports whether the outline stands for a failed request.
func (o Outline) IsError() bool {
	return o.Title == ErrorTitle
}

// EffectiveMode treats an unset mode as strict.
func (o Outline) EffectiveMode() Mode {
	if o.Mode == ModeCreative {
		return ModeCreative
	}
	return ModeStrict
}

// UnmarshalJSON reads an outline field by field. Fields of the wrong type
// fall back to defaults instead of failing the whole payload; only a
// non-object document is an error.
func (o *Outline) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("outline must be a JSON object")
	}

	*o = Outline{Title: DefaultTitle}
	if raw, ok := fields["presentation_title"]; ok {
		o.Title, _ = scalarString(raw)
	}
	if raw, ok := fields["subtitle"]; ok {
		o.Subtitle, _ = scalarString(raw)
	}
	if raw, ok := fields["original_text"]; ok {
		o.SourceText, _ = scalarString(raw)
	}
	if raw, ok := fields["mode"]; ok {
		if m, _ := scalarString(raw); Mode(m) == ModeCreative || Mode(m) == ModeStrict {
			o.Mode = Mode(m)
		}
	}

	o.Slides = []SlideSpec{}
	var items []json.RawMessage
	if raw, ok := fields["slides"]; ok && json.Unmarshal(raw, &items) == nil {
		for _, item := range items {
			var s SlideSpec
			if err := json.Unmarshal(item, &s); err != nil {
				continue
			}
			o.Slides = append(o.Slides, s)
		}
	}
	return nil
}

// SlideSpec is one outline entry as the model returned it.
type SlideSpec struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// UnmarshalJSON coerces content: a string becomes a one-element list,
// scalar list items are stringified, anything else is empty.
func (s *SlideSpec) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("slide must be a JSON object")
	}

	*s = SlideSpec{Content: []string{}}
	if raw, ok := fields["title"]; ok {
		s.Title, _ = scalarString(raw)
	}
	raw, ok := fields["content"]
	if !ok {
		return nil
	}
	if str, isString := stringValue(raw); isString {
		s.Content = []string{str}
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	for _, item := range items {
		if text, ok := itemString(item); ok {
			s.Content = append(s.Content, text)
		}
	}
	return nil
}

// TopicGroup merges every slide entry that shares a normalized title.
type TopicGroup struct {
	Title   string
	Content []string
}

func stringValue(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// scalarString reads strings, numbers and booleans as text.
func scalarString(raw json.RawMessage) (string, bool) {
	if s, ok := stringValue(raw); ok {
		return s, true
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case 'n', '{', '[':
		return "", false
	}
	return string(trimmed), true
}

// itemString is scalarString plus compact JSON text for nested values.
func itemString(raw json.RawMessage) (string, bool) {
	if s, ok := scalarString(raw); ok {
		return s, true
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == 'n' {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", false
	}
	return buf.String(), true
}
