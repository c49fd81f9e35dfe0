package outline

import "strings"

// Group merges slide entries whose normalized titles match
// case-insensitively. Groups keep first-seen order and the first-seen
// display title; content is concatenated in arrival order.
func Group(slides []SlideSpec) []TopicGroup {
	var groups []TopicGroup
	index := make(map[string]int)
	for _, s := range slides {
		title := Normalize(s.Title)
		key := strings.ToLower(strings.TrimSpace(title))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TopicGroup{Title: title, Content: []string{}})
		}
		groups[i].Content = append(groups[i].Content, s.Content...)
	}
	return groups
}

// TableOfContents returns the items of the deck's plan slide. Strict
// outlines prefer the plan declared in the source text; otherwise the
// distinct normalized slide titles are used in first-seen order.
func TableOfContents(o Outline) []string {
	if o.EffectiveMode() == ModeStrict {
		if items := ExtractTableOfContents(o.SourceText); len(items) > 0 {
			return items
		}
	}
	var items []string
	seen := make(map[string]bool)
	for _, s := range o.Slides {
		t := Normalize(s.Title)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		items = append(items, t)
	}
	return items
}
