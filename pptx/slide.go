package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
)

// Slide is a slide added during this session.
type Slide struct {
	part   string
	layout *Layout
	shapes []*Shape
	nextID int
}

// Layout returns the layout the slide was created from.
func (s *Slide) Layout() *Layout { return s.layout }

// Shapes returns the slide's shapes in z-order.
func (s *Slide) Shapes() []*Shape { return s.shapes }

// AddTextBox adds a free text box with the given frame.
func (s *Slide) AddTextBox(x, y, cx, cy Length) *Shape {
	id := s.allocID()
	sh := &Shape{
		id:    id,
		name:  fmt.Sprintf("TextBox %d", id-1),
		frame: &Rect{X: x, Y: y, CX: cx, CY: cy},
		text:  newTextFrame(),
	}
	s.shapes = append(s.shapes, sh)
	return sh
}

func (s *Slide) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Slide) clonePlaceholders() {
	for _, lp := range s.layout.placeholders {
		if !lp.ph.cloneable() {
			continue
		}
		ph := lp.ph
		id := s.allocID()
		s.shapes = append(s.shapes, &Shape{
			id:     id,
			name:   fmt.Sprintf("%s %d", ph.displayName(), id-1),
			ph:     &ph,
			layout: s.layout,
			text:   newTextFrame(),
		})
	}
}

func (s *Slide) marshal() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<p:sld xmlns:a="` + nsDrawing + `" xmlns:r="` + nsRelationships + `" xmlns:p="` + nsPresentation + `">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	for _, sh := range s.shapes {
		writeShape(&b, sh)
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.Bytes()
}

func writeShape(b *bytes.Buffer, sh *Shape) {
	b.WriteString(`<p:sp><p:nvSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, sh.id, escapeAttr(sh.name))
	if sh.ph != nil {
		b.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>`)
		writePh(b, *sh.ph)
		b.WriteString(`</p:nvPr>`)
	} else {
		b.WriteString(`<p:cNvSpPr txBox="1"/><p:nvPr/>`)
	}
	b.WriteString(`</p:nvSpPr><p:spPr>`)
	if sh.frame != nil {
		fmt.Fprintf(b, `<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
			sh.frame.X, sh.frame.Y, sh.frame.CX, sh.frame.CY)
	}
	if sh.ph == nil {
		b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/>`)
	}
	b.WriteString(`</p:spPr>`)
	writeTextBody(b, sh)
	b.WriteString(`</p:sp>`)
}

func writePh(b *bytes.Buffer, ph Placeholder) {
	b.WriteString(`<p:ph`)
	if ph.Type != "" {
		fmt.Fprintf(b, ` type="%s"`, escapeAttr(ph.Type))
	}
	if ph.Orient != "" {
		fmt.Fprintf(b, ` orient="%s"`, escapeAttr(ph.Orient))
	}
	if ph.Size != "" {
		fmt.Fprintf(b, ` sz="%s"`, escapeAttr(ph.Size))
	}
	if ph.Idx != 0 {
		fmt.Fprintf(b, ` idx="%d"`, ph.Idx)
	}
	b.WriteString(`/>`)
}

func writeTextBody(b *bytes.Buffer, sh *Shape) {
	tf := sh.text
	b.WriteString(`<p:txBody><a:bodyPr`)
	if tf.WordWrap != nil {
		if *tf.WordWrap {
			b.WriteString(` wrap="square"`)
		} else {
			b.WriteString(` wrap="none"`)
		}
	}
	if sh.ph == nil {
		b.WriteString(`><a:spAutoFit/></a:bodyPr>`)
	} else {
		b.WriteString(`/>`)
	}
	b.WriteString(`<a:lstStyle/>`)
	for _, p := range tf.paragraphs {
		writeParagraph(b, p)
	}
	b.WriteString(`</p:txBody>`)
}

var lineBreaks = regexp.MustCompile(`\r\n|[\n\r\v]`)

func writeParagraph(b *bytes.Buffer, p *Paragraph) {
	b.WriteString(`<a:p>`)
	if p.Level > 0 || p.SpaceAfter > 0 {
		b.WriteString(`<a:pPr`)
		if p.Level > 0 {
			b.WriteString(` lvl="` + strconv.Itoa(p.Level) + `"`)
		}
		if p.SpaceAfter > 0 {
			fmt.Fprintf(b, `><a:spcAft><a:spcPts val="%d"/></a:spcAft></a:pPr>`, p.SpaceAfter.centipoints())
		} else {
			b.WriteString(`/>`)
		}
	}
	rPr := `<a:rPr lang="en-US" dirty="0"/>`
	end := `<a:endParaRPr lang="en-US" dirty="0"/>`
	if p.FontSize > 0 {
		sz := p.FontSize.centipoints()
		rPr = fmt.Sprintf(`<a:rPr lang="en-US" sz="%d" dirty="0"/>`, sz)
		end = fmt.Sprintf(`<a:endParaRPr lang="en-US" sz="%d" dirty="0"/>`, sz)
	}
	// Newlines inside a paragraph are soft line breaks.
	for i, line := range lineBreaks.Split(p.Text, -1) {
		if i > 0 {
			b.WriteString(`<a:br>` + rPr + `</a:br>`)
		}
		if line == "" {
			continue
		}
		b.WriteString(`<a:r>` + rPr + `<a:t>`)
		_ = xml.EscapeText(b, []byte(line))
		b.WriteString(`</a:t></a:r>`)
	}
	b.WriteString(end)
	b.WriteString(`</a:p>`)
}

func (s *Slide) marshalRels(layoutTarget string) []byte {
	return []byte(xml.Header + `<Relationships xmlns="` + nsPackageRels + `">` +
		`<Relationship Id="rId1" Type="` + relTypeSlideLayout + `" Target="` + escapeAttr(layoutTarget) + `"/>` +
		`</Relationships>`)
}
