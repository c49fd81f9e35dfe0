// Package deck renders an outline into a slide deck built on a template.
//
// Information Hiding:
// - Which template layout each slide role uses, and the fallback order
// - How writable text regions are found and ordered on a slide
// - Slide construction order, fixed labels and body text styling
// - Containment of per-slide faults so one bad slide never stops the deck
package deck

import "fmt"

// Role is the purpose a slide serves in the deck.
type Role int

const (
	RoleCover Role = iota
	RoleTableOfContents
	RoleSection
	RoleContent
	RoleClosing
)

func (r Role) String() string {
	switch r {
	case RoleCover:
		return "cover"
	case RoleTableOfContents:
		return "table_of_contents"
	case RoleSection:
		return "section"
	case RoleContent:
		return "content"
	case RoleClosing:
		return "closing"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// LayoutMap assigns a preferred template layout index to every role.
// Fallback is tried when a preferred index does not exist in the
// template, then index 0.
type LayoutMap struct {
	Cover           int `yaml:"cover"`
	TableOfContents int `yaml:"table_of_contents"`
	Section         int `yaml:"section"`
	Content         int `yaml:"content"`
	Closing         int `yaml:"closing"`
	Fallback        int `yaml:"fallback"`
}

// DefaultLayoutMap matches the layout order of a standard branded template.
func DefaultLayoutMap() LayoutMap {
	return LayoutMap{
		Cover:           1,
		TableOfContents: 2,
		Section:         3,
		Content:         4,
		Closing:         5,
		Fallback:        1,
	}
}

// Preferred returns the configured index for a role.
func (m LayoutMap) Preferred(role Role) int {
	switch role {
	case RoleCover:
		return m.Cover
	case RoleTableOfContents:
		return m.TableOfContents
	case RoleSection:
		return m.Section
	case RoleContent:
		return m.Content
	case RoleClosing:
		return m.Closing
	default:
		return m.Fallback
	}
}

// ResolveLayout picks a layout index that exists in a template with
// count layouts. It never fails; a template without layouts still gets 0.
func ResolveLayout(role Role, count int, m LayoutMap) int {
	if i := m.Preferred(role); inRange(i, count) {
		return i
	}
	if inRange(m.Fallback, count) {
		return m.Fallback
	}
	return 0
}

func inRange(i, count int) bool {
	return i >= 0 && i < count
}
