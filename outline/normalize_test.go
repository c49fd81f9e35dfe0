package outline

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "Untitled"},
		{"plain", "Market Analysis", "Market Analysis"},
		{"enumeration and section tag", "2. Market Analysis (Section)", "Market Analysis"},
		{"content tag mid title", "Risks (CONTENT) Overview", "RisksOverview"},
		{"tag before enumeration", "(Section) 2. Intro", "Intro"},
		{"tag between words", "A(Content)B", "AB"},
		{"emphasis", "**Bold** __Title__", "Bold Title"},
		{"paren enumeration", "3) Roadmap", "Roadmap"},
		{"dash enumeration", "4- Budget", "Budget"},
		{"decoration only", "(Section)", ""},
		{"leading number followed by space", "2024 Plan", "Plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"2. **Intro** (Section)", "Plain", "__A__ (Content)"} {
		once := Normalize(in)
		if once == "" {
			continue
		}
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestExtractTableOfContents(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "sommaire line",
			text: "Intro text\nSommaire: Intro, Market; Outlook\nmore",
			want: []string{"Intro", "Market", "Outlook"},
		},
		{
			name: "plan with dash and decorations",
			text: "plan - 1. Vision (Section), **Team**",
			want: []string{"Vision", "Team"},
		},
		{
			name: "first line wins",
			text: "Plan: A, B\nSommaire: C",
			want: []string{"A", "B"},
		},
		{
			name: "blank items skipped",
			text: "Sommaire: A,, ;B",
			want: []string{"A", "B"},
		},
		{
			name: "no plan line",
			text: "Nothing to see here",
			want: nil,
		},
		{
			name: "must start the line",
			text: "Our Plan: A, B",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTableOfContents(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTableOfContents() = %q, want %q", got, tt.want)
			}
		})
	}
}
