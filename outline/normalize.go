package outline

import (
	"regexp"
	"strings"
)

// UntitledLabel replaces an empty title.
const UntitledLabel = "Untitled"

var (
	roleAnnotation    = regexp.MustCompile(`(?i)\s*\((SECTION|CONTENT)\)\s*`)
	enumerationPrefix = regexp.MustCompile(`^\d+[.\-)\s]+\s*`)
	planLine          = regexp.MustCompile(`(?i)^(?:Sommaire|Plan)\s*[:\-]\s*(.*)`)
	planSeparators    = regexp.MustCompile(`[,;]`)
)

// Normalize strips the decorations models add to titles: "(Section)" and
// "(Content)" annotations together with the whitespace around them, a
// leading "2." style number, and ** / __ emphasis markers.
func Normalize(raw string) string {
	if raw == "" {
		return UntitledLabel
	}
	text := roleAnnotation.ReplaceAllString(raw, "")
	text = enumerationPrefix.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	return strings.TrimSpace(text)
}

// ExtractTableOfContents reads the plan a source text declares on a
// "Sommaire: a, b; c" or "Plan - a, b" line. Only the first such line
// counts. An empty result means the text declares no plan.
func ExtractTableOfContents(sourceText string) []string {
	for _, line := range strings.Split(sourceText, "\n") {
		m := planLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var items []string
		for _, item := range planSeparators.Split(m[1], -1) {
			if strings.TrimSpace(item) == "" {
				continue
			}
			items = append(items, Normalize(item))
		}
		return items
	}
	return nil
}
