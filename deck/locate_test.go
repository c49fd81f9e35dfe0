package deck

import (
	"testing"

	"github.com/richinex/slidesmith/pptx"
)

func TestLocateTextRegionsOrdersAndFiltersFooter(t *testing.T) {
	pres := pptx.NewDefault()
	slide, err := pres.AddSlide(3)
	if err != nil {
		t.Fatalf("AddSlide failed: %v", err)
	}
	footer := slide.AddTextBox(pptx.Inches(1), pptx.Inches(7), pptx.Inches(4), pptx.Inches(0.4))
	top := slide.AddTextBox(pptx.Inches(1), 0, pptx.Inches(4), pptx.Inches(0.5))

	regions := LocateTextRegions(slide, pres.SlideHeight())
	if len(regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(regions))
	}
	if regions[0] != top {
		t.Errorf("expected the top text box first, got %q", regions[0].Name())
	}
	if regions[1].Placeholder().Type != "body" || regions[2].Placeholder().Type != "title" {
		t.Errorf("unexpected order %q, %q", regions[1].Name(), regions[2].Name())
	}
	for _, r := range regions {
		if r == footer {
			t.Error("footer band region should be excluded")
		}
	}
}

func TestLocateTextRegionsStopsAtMissingGeometry(t *testing.T) {
	pres, err := pptx.Build(pptx.TemplateSpec{
		Width:  9144000,
		Height: 6858000,
		Layouts: []pptx.LayoutSpec{{Name: "Broken", Placeholders: []pptx.PlaceholderSpec{
			{Type: "title", Name: "Title 1", Frame: &pptx.Rect{Y: 500000, CX: 100, CY: 100}},
			{Type: "body", Idx: 1, Name: "Body 2"},
			{Type: "subTitle", Idx: 2, Name: "Subtitle 3", Frame: &pptx.Rect{Y: 100, CX: 100, CY: 100}},
		}}},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	slide, _ := pres.AddSlide(0)

	regions := LocateTextRegions(slide, pres.SlideHeight())
	if len(regions) != 1 || regions[0].Name() != "Title 1" {
		t.Errorf("expected only the title collected before the fault, got %d regions", len(regions))
	}
}
