package deck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/outline"
	"github.com/richinex/slidesmith/pptx"
)

const (
	// TableOfContentsHeading is written at the top of the plan slide.
	TableOfContentsHeading = "PLAN"
	// EmptyContentLine stands in for a topic that arrived without bullets.
	EmptyContentLine = "Content to be generated."
)

var (
	bodyFontSize   = pptx.Pt(18)
	bodySpaceAfter = pptx.Pt(10)

	minListWidth     = pptx.Inches(4)
	widenedListWidth = pptx.Inches(4.5)

	// Body box used when the content layout has no second text region.
	fallbackBody = pptx.Rect{X: pptx.Inches(1), Y: pptx.Inches(2), CX: pptx.Inches(8), CY: pptx.Inches(4)}
)

var errNoLayouts = errors.New("template has no layouts")

// RenderFault records a slide step that failed. The deck is still saved.
type RenderFault struct {
	Step string
	Err  error
}

func (f RenderFault) Error() string {
	return fmt.Sprintf("%s: %v", f.Step, f.Err)
}

func (f RenderFault) Unwrap() error {
	return f.Err
}

// Report describes a finished render.
type Report struct {
	Path   string
	Slides int
	Groups int
	Faults []RenderFault
}

// Renderer writes outlines onto template slides.
type Renderer struct {
	layouts LayoutMap
	log     *logger.Logger
}

// NewRenderer returns a renderer using the given layout assignment.
func NewRenderer(layouts LayoutMap, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.Nop()
	}
	return &Renderer{layouts: layouts, log: log}
}

// Render appends the deck for o to pres and saves it to outputPath.
// Slide steps run independently: a failing step is recorded in the
// report and rendering moves on. The returned error is non-nil only when
// the document cannot be saved.
func (r *Renderer) Render(o outline.Outline, pres *pptx.Presentation, outputPath string) (Report, error) {
	report := Report{Path: outputPath}
	before := len(pres.Slides())

	toc := outline.TableOfContents(o)
	groups := outline.Group(o.Slides)
	report.Groups = len(groups)

	run := func(step string, fn func() error) {
		if err := r.runStep(step, fn); err != nil {
			fault := RenderFault{Step: step, Err: err}
			report.Faults = append(report.Faults, fault)
			r.log.Warn("slide step failed", "step", step, "error", err)
		}
	}

	run("cover", func() error { return r.cover(pres, o) })
	run("table_of_contents", func() error { return r.tableOfContents(pres, toc) })
	for i, g := range groups {
		counter := fmt.Sprintf("%02d", i+1)
		run("section "+counter, func() error { return r.section(pres, counter, g.Title) })
		run("content "+counter, func() error { return r.content(pres, g) })
	}
	run("closing", func() error {
		_, err := r.addSlide(pres, RoleClosing)
		return err
	})

	report.Slides = len(pres.Slides()) - before
	if err := pres.Save(outputPath); err != nil {
		return report, fmt.Errorf("save deck: %w", err)
	}
	r.log.Info("deck rendered", "path", outputPath, "slides", report.Slides, "faults", len(report.Faults))
	return report, nil
}

func (r *Renderer) runStep(step string, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s: %v", step, p)
		}
	}()
	return fn()
}

func (r *Renderer) addSlide(pres *pptx.Presentation, role Role) (*pptx.Slide, error) {
	count := len(pres.Layouts())
	if count == 0 {
		return nil, errNoLayouts
	}
	index := ResolveLayout(role, count, r.layouts)
	slide, err := pres.AddSlide(index)
	if err != nil {
		return nil, fmt.Errorf("add %s slide with layout %d: %w", role, index, err)
	}
	return slide, nil
}

func (r *Renderer) cover(pres *pptx.Presentation, o outline.Outline) error {
	slide, err := r.addSlide(pres, RoleCover)
	if err != nil {
		return err
	}
	regions := LocateTextRegions(slide, pres.SlideHeight())
	if len(regions) > 0 {
		regions[0].TextFrame().SetText(outline.Normalize(o.Title))
	}
	if len(regions) > 1 {
		regions[1].TextFrame().SetText(o.Subtitle)
	}
	return nil
}

func (r *Renderer) tableOfContents(pres *pptx.Presentation, items []string) error {
	slide, err := r.addSlide(pres, RoleTableOfContents)
	if err != nil {
		return err
	}
	regions := LocateTextRegions(slide, pres.SlideHeight())
	if len(regions) > 0 {
		regions[0].TextFrame().SetText(TableOfContentsHeading)
	}

	list := listRegion(regions, pres.SlideWidth())
	if list == nil {
		return nil
	}
	list.TextFrame().Clear()
	if frame, err := list.Frame(); err == nil && frame.CX < minListWidth {
		if err := list.SetWidth(widenedListWidth); err != nil {
			return fmt.Errorf("widen list region: %w", err)
		}
	}

	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	list.TextFrame().SetText(strings.Join(lines, "\n"))
	return nil
}

// listRegion prefers the first region after the heading that sits in the
// left half of the slide, then the second region.
func listRegion(regions []*pptx.Shape, slideWidth pptx.Length) *pptx.Shape {
	if len(regions) < 2 {
		return nil
	}
	for _, sh := range regions[1:] {
		frame, err := sh.Frame()
		if err != nil {
			continue
		}
		if frame.CenterX() < slideWidth/2 {
			return sh
		}
	}
	return regions[1]
}

func (r *Renderer) section(pres *pptx.Presentation, counter, title string) error {
	slide, err := r.addSlide(pres, RoleSection)
	if err != nil {
		return err
	}
	regions := LocateTextRegions(slide, pres.SlideHeight())
	switch {
	case len(regions) >= 2:
		regions[0].TextFrame().SetText(counter)
		regions[1].TextFrame().SetText(title)
	case len(regions) == 1:
		regions[0].TextFrame().SetText(counter + " " + title)
	}
	return nil
}

func (r *Renderer) content(pres *pptx.Presentation, g outline.TopicGroup) error {
	slide, err := r.addSlide(pres, RoleContent)
	if err != nil {
		return err
	}
	regions := LocateTextRegions(slide, pres.SlideHeight())
	if len(regions) > 0 {
		regions[0].TextFrame().SetText(g.Title)
	}

	items := g.Content
	if len(items) == 0 {
		items = []string{EmptyContentLine}
	}

	var body *pptx.TextFrame
	if len(regions) > 1 {
		body = regions[1].TextFrame()
	} else {
		box := slide.AddTextBox(fallbackBody.X, fallbackBody.Y, fallbackBody.CX, fallbackBody.CY)
		wrap := true
		body = box.TextFrame()
		body.WordWrap = &wrap
	}

	body.Clear()
	for i, item := range items {
		p := body.Paragraphs()[0]
		if i > 0 {
			p = body.AddParagraph()
		}
		p.Text = item
		p.Level = 0
		p.FontSize = bodyFontSize
		p.SpaceAfter = bodySpaceAfter
	}
	return nil
}
