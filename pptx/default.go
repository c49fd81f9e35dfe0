package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// TemplateSpec describes a synthetic template: slide size, master
// placeholders and an ordered list of layouts.
type TemplateSpec struct {
	Width, Height      Length
	MasterPlaceholders []PlaceholderSpec
	Layouts            []LayoutSpec
}

// LayoutSpec is one layout of a synthetic template.
type LayoutSpec struct {
	Name         string
	Placeholders []PlaceholderSpec
}

// PlaceholderSpec places a placeholder. A nil Frame leaves geometry to be
// inherited from the master.
type PlaceholderSpec struct {
	Type  string
	Idx   int
	Name  string
	Frame *Rect
}

func frame(x, y, cx, cy Length) *Rect {
	return &Rect{X: x, Y: y, CX: cx, CY: cy}
}

// DefaultTemplateSpec is the built-in 16:9 template with one layout per
// deck role: title only, title slide, two content, section header, title
// and content, closing.
func DefaultTemplateSpec() TemplateSpec {
	return TemplateSpec{
		Width:  12192000,
		Height: 6858000,
		MasterPlaceholders: []PlaceholderSpec{
			{Type: "title", Name: "Title Placeholder 1", Frame: frame(838200, 365125, 10515600, 1325563)},
			{Type: "body", Idx: 1, Name: "Text Placeholder 2", Frame: frame(838200, 1825625, 10515600, 4351338)},
			{Type: "dt", Idx: 2, Name: "Date Placeholder 3", Frame: frame(838200, 6356350, 2743200, 365125)},
			{Type: "ftr", Idx: 3, Name: "Footer Placeholder 4", Frame: frame(4038600, 6356350, 4114800, 365125)},
			{Type: "sldNum", Idx: 4, Name: "Slide Number Placeholder 5", Frame: frame(8610600, 6356350, 2743200, 365125)},
		},
		Layouts: []LayoutSpec{
			{Name: "Title Only", Placeholders: []PlaceholderSpec{
				{Type: "title", Name: "Title 1"},
			}},
			{Name: "Title Slide", Placeholders: []PlaceholderSpec{
				{Type: "ctrTitle", Name: "Title 1", Frame: frame(1524000, 1122363, 9144000, 2387600)},
				{Type: "subTitle", Idx: 1, Name: "Subtitle 2", Frame: frame(1524000, 3602038, 9144000, 1655762)},
			}},
			{Name: "Two Content", Placeholders: []PlaceholderSpec{
				{Type: "title", Name: "Title 1"},
				{Type: "body", Idx: 1, Name: "Content Placeholder 2", Frame: frame(838200, 1825625, 5181600, 4351338)},
				{Type: "body", Idx: 2, Name: "Content Placeholder 3", Frame: frame(6172200, 1825625, 5181600, 4351338)},
			}},
			{Name: "Section Header", Placeholders: []PlaceholderSpec{
				{Type: "body", Idx: 1, Name: "Text Placeholder 2", Frame: frame(831850, 1200000, 10515600, 1100000)},
				{Type: "title", Name: "Title 1", Frame: frame(831850, 2500000, 10515600, 2000000)},
			}},
			{Name: "Title and Content", Placeholders: []PlaceholderSpec{
				{Type: "title", Name: "Title 1"},
				{Type: "body", Idx: 1, Name: "Content Placeholder 2"},
				{Type: "ftr", Idx: 3, Name: "Footer Placeholder 4"},
			}},
			{Name: "Closing", Placeholders: []PlaceholderSpec{
				{Type: "ctrTitle", Name: "Title 1", Frame: frame(1524000, 2235200, 9144000, 2387600)},
			}},
		},
	}
}

// NewDefault returns a blank presentation built from DefaultTemplateSpec.
func NewDefault() *Presentation {
	p, err := Build(DefaultTemplateSpec())
	if err != nil {
		panic(fmt.Sprintf("pptx: built-in template: %v", err))
	}
	return p
}

// Build assembles a package from spec and opens it.
func Build(spec TemplateSpec) (*Presentation, error) {
	if len(spec.Layouts) == 0 {
		return nil, fmt.Errorf("template needs at least one layout")
	}
	pkg := &opcPackage{parts: map[string][]byte{}}

	var overrides strings.Builder
	override := func(part, ct string) {
		fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="%s"/>`, part, ct)
	}
	override("ppt/presentation.xml", "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml")
	override("ppt/slideMasters/slideMaster1.xml", "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml")
	override("ppt/theme/theme1.xml", "application/vnd.openxmlformats-officedocument.theme+xml")
	for i := range spec.Layouts {
		override(fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1), "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml")
	}
	pkg.put(contentTypesPart, []byte(xml.Header+
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		overrides.String()+`</Types>`))

	pkg.put(packageRelsPart, rels(xRel{ID: "rId1", Type: relTypeOfficeDocument, Target: "ppt/presentation.xml"}))

	pkg.put("ppt/presentation.xml", []byte(fmt.Sprintf(xml.Header+
		`<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
		`<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/>`+
		`</p:presentation>`, nsDrawing, nsRelationships, nsPresentation, spec.Width, spec.Height)))
	pkg.put(relsPartFor("ppt/presentation.xml"), rels(
		xRel{ID: "rId1", Type: relTypeSlideMaster, Target: "slideMasters/slideMaster1.xml"},
		xRel{ID: "rId2", Type: relTypeTheme, Target: "theme/theme1.xml"},
	))

	var layoutIDs strings.Builder
	masterRels := make([]xRel, 0, len(spec.Layouts)+1)
	for i, l := range spec.Layouts {
		rid := fmt.Sprintf("rId%d", i+1)
		fmt.Fprintf(&layoutIDs, `<p:sldLayoutId id="%d" r:id="%s"/>`, 2147483649+i, rid)
		masterRels = append(masterRels, xRel{ID: rid, Type: relTypeSlideLayout, Target: fmt.Sprintf("../slideLayouts/slideLayout%d.xml", i+1)})

		part := fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1)
		pkg.put(part, []byte(xml.Header+
			`<p:sldLayout xmlns:a="`+nsDrawing+`" xmlns:r="`+nsRelationships+`" xmlns:p="`+nsPresentation+`" preserve="1">`+
			`<p:cSld name="`+escapeAttr(l.Name)+`">`+spTree(l.Placeholders)+`</p:cSld>`+
			`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`))
		pkg.put(relsPartFor(part), rels(xRel{ID: "rId1", Type: relTypeSlideMaster, Target: "../slideMasters/slideMaster1.xml"}))
	}
	masterRels = append(masterRels, xRel{ID: fmt.Sprintf("rId%d", len(spec.Layouts)+1), Type: relTypeTheme, Target: "../theme/theme1.xml"})

	pkg.put("ppt/slideMasters/slideMaster1.xml", []byte(xml.Header+
		`<p:sldMaster xmlns:a="`+nsDrawing+`" xmlns:r="`+nsRelationships+`" xmlns:p="`+nsPresentation+`">`+
		`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>`+spTree(spec.MasterPlaceholders)+`</p:cSld>`+
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`+
		`<p:sldLayoutIdLst>`+layoutIDs.String()+`</p:sldLayoutIdLst>`+
		`</p:sldMaster>`))
	pkg.put(relsPartFor("ppt/slideMasters/slideMaster1.xml"), rels(masterRels...))
	pkg.put("ppt/theme/theme1.xml", []byte(themeXML))

	var buf bytes.Buffer
	if err := pkg.write(&buf); err != nil {
		return nil, err
	}
	return OpenBytes(buf.Bytes())
}

func rels(entries ...xRel) []byte {
	var b strings.Builder
	b.WriteString(xml.Header + `<Relationships xmlns="` + nsPackageRels + `">`)
	for _, r := range entries {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.ID, r.Type, escapeAttr(r.Target))
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func spTree(phs []PlaceholderSpec) string {
	var b bytes.Buffer
	b.WriteString(`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	for i, ph := range phs {
		sh := &Shape{
			id:    i + 2,
			name:  ph.Name,
			ph:    &Placeholder{Type: ph.Type, Idx: ph.Idx},
			frame: ph.Frame,
			text:  newTextFrame(),
		}
		writeShape(&b, sh)
	}
	b.WriteString(`</p:spTree>`)
	return b.String()
}

const themeXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements>` +
	`<a:clrScheme name="Office">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1><a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4472C4"/></a:accent1><a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Office">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Office">` +
	`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
	`<a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
	`</a:fmtScheme></a:themeElements></a:theme>`
