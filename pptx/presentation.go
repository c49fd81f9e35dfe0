package pptx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrLayoutOutOfRange is returned by AddSlide for an index the master does not have.
	ErrLayoutOutOfRange = errors.New("layout index out of range")
	// ErrNoGeometry is returned when a shape's position cannot be resolved.
	ErrNoGeometry = errors.New("shape has no resolvable geometry")
)

var (
	slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	sldSzPattern     = regexp.MustCompile(`<(\w+:)?sldSz\b`)
	sldIDLstClose    = regexp.MustCompile(`</(\w+:)?sldIdLst>`)
	sldIDLstEmpty    = regexp.MustCompile(`<(\w+:)?sldIdLst\s*/>`)
)

// Presentation is an opened deck: the template's parts plus the slides
// added since opening.
type Presentation struct {
	pkg       *opcPackage
	presPart  string
	width     Length
	height    Length
	master    *Master
	layouts   []*Layout
	existing  int
	maxSldID  int
	nextSlide int
	slides    []*Slide
}

// Open reads a .pptx file from disk.
func Open(path string) (*Presentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenBytes(data)
}

// OpenReader reads a .pptx package from r.
func OpenReader(r io.Reader) (*Presentation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read presentation: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes parses an in-memory .pptx package.
func OpenBytes(data []byte) (*Presentation, error) {
	pkg, err := readPackage(data)
	if err != nil {
		return nil, err
	}

	rootRels, err := pkg.relsOf("")
	if err != nil {
		return nil, err
	}
	presPart, ok := rootRels.firstOfType(relTypeOfficeDocument)
	if !ok {
		presPart = "ppt/presentation.xml"
	}
	presXML, err := pkg.get(presPart)
	if err != nil {
		return nil, err
	}
	var xp xPresentation
	if err := decodeXML(presXML, &xp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", presPart, err)
	}

	p := &Presentation{
		pkg:      pkg,
		presPart: presPart,
		width:    Length(xp.SldSz.Cx),
		height:   Length(xp.SldSz.Cy),
		existing: len(xp.SldIDs),
		maxSldID: 255,
	}
	for _, ref := range xp.SldIDs {
		if n, err := strconv.Atoi(ref.ID); err == nil && n > p.maxSldID {
			p.maxSldID = n
		}
	}
	for name := range pkg.parts {
		if m := slidePartPattern.FindStringSubmatch(name); m != nil {
			if n, _ := strconv.Atoi(m[1]); n > p.nextSlide {
				p.nextSlide = n
			}
		}
	}
	p.nextSlide++

	if len(xp.SldMasterIDs) == 0 {
		return nil, fmt.Errorf("%s declares no slide master", presPart)
	}
	presRels, err := pkg.relsOf(presPart)
	if err != nil {
		return nil, err
	}
	masterPart, ok := presRels.target(xp.SldMasterIDs[0].RID)
	if !ok {
		return nil, fmt.Errorf("slide master relationship %q not found", xp.SldMasterIDs[0].RID)
	}
	if err := p.loadMaster(masterPart); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Presentation) loadMaster(part string) error {
	b, err := p.pkg.get(part)
	if err != nil {
		return err
	}
	var xm xSlidePart
	if err := decodeXML(b, &xm); err != nil {
		return fmt.Errorf("parse %s: %w", part, err)
	}
	p.master = &Master{part: part, placeholders: parsePlaceholders(&xm)}

	rels, err := p.pkg.relsOf(part)
	if err != nil {
		return err
	}
	for _, ref := range xm.SldLayoutIDs {
		layoutPart, ok := rels.target(ref.RID)
		if !ok {
			continue
		}
		lb, err := p.pkg.get(layoutPart)
		if err != nil {
			continue
		}
		var xl xSlidePart
		if err := decodeXML(lb, &xl); err != nil {
			return fmt.Errorf("parse %s: %w", layoutPart, err)
		}
		p.layouts = append(p.layouts, &Layout{
			Name:         xl.CSld.Name,
			part:         layoutPart,
			master:       p.master,
			placeholders: parsePlaceholders(&xl),
		})
	}
	return nil
}

// SlideWidth is the slide width in EMU.
func (p *Presentation) SlideWidth() Length { return p.width }

// SlideHeight is the slide height in EMU.
func (p *Presentation) SlideHeight() Length { return p.height }

// Layouts returns the master's layouts in positional order.
func (p *Presentation) Layouts() []*Layout { return p.layouts }

// Slides returns the slides added since the presentation was opened.
func (p *Presentation) Slides() []*Slide { return p.slides }

// SlideCount counts template slides plus added slides.
func (p *Presentation) SlideCount() int { return p.existing + len(p.slides) }

// AddSlide appends a slide built from the layout at index, with the
// layout's placeholders cloned onto it.
func (p *Presentation) AddSlide(index int) (*Slide, error) {
	if index < 0 || index >= len(p.layouts) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrLayoutOutOfRange, index, len(p.layouts))
	}
	s := &Slide{
		part:   fmt.Sprintf("ppt/slides/slide%d.xml", p.nextSlide),
		layout: p.layouts[index],
		nextID: 2,
	}
	p.nextSlide++
	s.clonePlaceholders()
	p.slides = append(p.slides, s)
	return s, nil
}

// Save writes the presentation to path.
func (p *Presentation) Save(path string) error {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write presentation: %w", err)
	}
	return nil
}

// Write serializes the package with every added slide to w. The
// Presentation itself is left unchanged, so Write may be called again.
func (p *Presentation) Write(w io.Writer) error {
	out := &opcPackage{parts: make(map[string][]byte, len(p.pkg.parts)), order: append([]string(nil), p.pkg.order...)}
	for k, v := range p.pkg.parts {
		out.parts[k] = v
	}

	presRels, err := out.relsOf(p.presPart)
	if err != nil {
		return err
	}
	var entries strings.Builder
	sldID := p.maxSldID
	for _, s := range p.slides {
		out.put(s.part, s.marshal())
		out.put(relsPartFor(s.part), s.marshalRels(relativeTarget(s.part, s.layout.part)))
		out.addOverride(s.part, contentTypeSlide)

		rid := presRels.nextID()
		presRels.byID[rid] = xRel{ID: rid, Type: relTypeSlide}
		out.appendRelationship(p.presPart, rid, relTypeSlide, relativeTarget(p.presPart, s.part))

		sldID++
		fmt.Fprintf(&entries, `<%%ssldId xmlns:r="%s" id="%d" r:id="%s"/>`, nsRelationships, sldID, rid)
	}

	if len(p.slides) > 0 {
		presXML, err := out.get(p.presPart)
		if err != nil {
			return err
		}
		updated, err := insertSlideIDs(presXML, entries.String())
		if err != nil {
			return err
		}
		out.put(p.presPart, updated)
	}
	return out.write(w)
}

// insertSlideIDs adds sldId entries to presentation.xml. Each entry holds a
// %s verb for the presentationml prefix used by the document.
func insertSlideIDs(doc []byte, entries string) ([]byte, error) {
	if loc := sldIDLstClose.FindSubmatchIndex(doc); loc != nil {
		prefix := submatch(doc, loc, 1)
		return splice(doc, loc[0], loc[0], withPrefix(entries, prefix)), nil
	}
	if loc := sldIDLstEmpty.FindSubmatchIndex(doc); loc != nil {
		prefix := submatch(doc, loc, 1)
		list := "<" + prefix + "sldIdLst>" + withPrefix(entries, prefix) + "</" + prefix + "sldIdLst>"
		return splice(doc, loc[0], loc[1], list), nil
	}
	if loc := sldSzPattern.FindSubmatchIndex(doc); loc != nil {
		prefix := submatch(doc, loc, 1)
		list := "<" + prefix + "sldIdLst>" + withPrefix(entries, prefix) + "</" + prefix + "sldIdLst>"
		return splice(doc, loc[0], loc[0], list), nil
	}
	return nil, errors.New("presentation part has no sldSz element")
}

func submatch(doc []byte, loc []int, group int) string {
	if loc[2*group] < 0 {
		return ""
	}
	return string(doc[loc[2*group]:loc[2*group+1]])
}

func withPrefix(entries, prefix string) string {
	return strings.ReplaceAll(entries, "<%ssldId", "<"+prefix+"sldId")
}

func splice(doc []byte, from, to int, insert string) []byte {
	out := make([]byte, 0, len(doc)+len(insert))
	out = append(out, doc[:from]...)
	out = append(out, insert...)
	return append(out, doc[to:]...)
}
