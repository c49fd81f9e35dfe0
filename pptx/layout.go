package pptx

import "fmt"

// Placeholder identifies a placeholder by type and index, as in <p:ph>.
// An empty Type is the schema default, "obj".
type Placeholder struct {
	Type   string
	Idx    int
	Orient string
	Size   string
}

// cloneable reports whether slides created from a layout receive a copy
// of this placeholder. Date, footer and slide number stay on the layout.
func (p Placeholder) cloneable() bool {
	switch p.Type {
	case "dt", "ftr", "sldNum":
		return false
	}
	return true
}

// baseType is the master placeholder type a layout placeholder inherits from.
func (p Placeholder) baseType() string {
	switch p.Type {
	case "title", "ctrTitle":
		return "title"
	case "dt", "ftr", "sldNum":
		return p.Type
	default:
		return "body"
	}
}

func (p Placeholder) displayName() string {
	switch p.Type {
	case "title", "ctrTitle":
		return "Title"
	case "subTitle":
		return "Subtitle"
	case "body":
		return "Text Placeholder"
	case "pic":
		return "Picture Placeholder"
	default:
		return "Content Placeholder"
	}
}

type layoutPlaceholder struct {
	ph    Placeholder
	name  string
	frame *Rect
}

// Master is the slide master the layouts inherit geometry from.
type Master struct {
	part         string
	placeholders []layoutPlaceholder
}

func (m *Master) frameByType(phType string) (Rect, bool) {
	if m == nil {
		return Rect{}, false
	}
	for _, lp := range m.placeholders {
		if lp.ph.baseType() == phType && lp.frame != nil {
			return *lp.frame, true
		}
	}
	return Rect{}, false
}

// Layout is one slide layout of the master, addressed by position.
type Layout struct {
	Name         string
	part         string
	master       *Master
	placeholders []layoutPlaceholder
}

// Placeholders lists the layout's placeholders in document order.
func (l *Layout) Placeholders() []Placeholder {
	out := make([]Placeholder, 0, len(l.placeholders))
	for _, lp := range l.placeholders {
		out = append(out, lp.ph)
	}
	return out
}

// frameFor resolves the geometry a slide placeholder inherits: the layout
// placeholder with the same idx, then the master placeholder of its base type.
func (l *Layout) frameFor(ph Placeholder) (Rect, error) {
	for _, lp := range l.placeholders {
		if lp.ph.Idx != ph.Idx {
			continue
		}
		if lp.frame != nil {
			return *lp.frame, nil
		}
		if r, ok := l.master.frameByType(lp.ph.baseType()); ok {
			return r, nil
		}
		break
	}
	if r, ok := l.master.frameByType(ph.baseType()); ok {
		return r, nil
	}
	return Rect{}, fmt.Errorf("%w: placeholder type=%q idx=%d on layout %q", ErrNoGeometry, ph.Type, ph.Idx, l.Name)
}

func parsePlaceholders(x *xSlidePart) []layoutPlaceholder {
	var out []layoutPlaceholder
	for _, sp := range x.CSld.SpTree.Shapes {
		ph := sp.NvSpPr.NvPr.Ph
		if ph == nil {
			continue
		}
		out = append(out, layoutPlaceholder{
			ph:    ph.placeholder(),
			name:  sp.NvSpPr.CNvPr.Name,
			frame: sp.SpPr.Xfrm.rect(),
		})
	}
	return out
}
