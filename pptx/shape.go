package pptx

import "strings"

// Shape is a text-bearing shape on a slide: a placeholder cloned from the
// layout, or a free text box.
type Shape struct {
	id     int
	name   string
	ph     *Placeholder
	frame  *Rect
	layout *Layout
	text   *TextFrame
}

// ID is the shape id, unique within its slide.
func (s *Shape) ID() int { return s.id }

// Name is the shape's display name.
func (s *Shape) Name() string { return s.name }

// Placeholder returns the placeholder reference, or nil for a text box.
func (s *Shape) Placeholder() *Placeholder { return s.ph }

// HasTextFrame reports whether the shape can hold text.
func (s *Shape) HasTextFrame() bool { return s.text != nil }

// TextFrame returns the shape's text.
func (s *Shape) TextFrame() *TextFrame { return s.text }

// Frame returns the effective position and size, following placeholder
// inheritance when the shape has no geometry of its own.
func (s *Shape) Frame() (Rect, error) {
	if s.frame != nil {
		return *s.frame, nil
	}
	if s.ph == nil || s.layout == nil {
		return Rect{}, ErrNoGeometry
	}
	return s.layout.frameFor(*s.ph)
}

// SetWidth overrides the width, materializing inherited geometry first.
func (s *Shape) SetWidth(cx Length) error {
	r, err := s.Frame()
	if err != nil {
		return err
	}
	r.CX = cx
	s.frame = &r
	return nil
}

// TextFrame is the ordered paragraphs of a shape.
type TextFrame struct {
	paragraphs []*Paragraph
	// WordWrap is nil to inherit, otherwise square or none wrapping.
	WordWrap *bool
}

func newTextFrame() *TextFrame {
	return &TextFrame{paragraphs: []*Paragraph{{}}}
}

// Paragraphs returns the paragraphs in order. There is always at least one.
func (tf *TextFrame) Paragraphs() []*Paragraph {
	return tf.paragraphs
}

// Text joins paragraph text with newlines.
func (tf *TextFrame) Text() string {
	parts := make([]string, len(tf.paragraphs))
	for i, p := range tf.paragraphs {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// SetText replaces all text; each line becomes its own paragraph.
func (tf *TextFrame) SetText(text string) {
	lines := strings.Split(text, "\n")
	tf.paragraphs = make([]*Paragraph, len(lines))
	for i, line := range lines {
		tf.paragraphs[i] = &Paragraph{Text: line}
	}
}

// Clear leaves a single empty paragraph.
func (tf *TextFrame) Clear() {
	tf.paragraphs = []*Paragraph{{}}
}

// AddParagraph appends an empty paragraph and returns it.
func (tf *TextFrame) AddParagraph() *Paragraph {
	p := &Paragraph{}
	tf.paragraphs = append(tf.paragraphs, p)
	return p
}

// Paragraph is a single line of text with its formatting. Zero values
// mean "inherit from the layout".
type Paragraph struct {
	Text       string
	Level      int
	FontSize   Length
	SpaceAfter Length
}
