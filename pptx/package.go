// Package pptx reads a PresentationML package, adds slides from its layouts,
// and writes it back out.
//
// Information Hiding:
// - Zip container and part naming
// - Relationship resolution between parts
// - Slide XML serialization
//
// Parts this package does not model are carried through Save byte-for-byte.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"

	relTypeOfficeDocument = nsRelationships + "/officeDocument"
	relTypeSlide          = nsRelationships + "/slide"
	relTypeSlideLayout    = nsRelationships + "/slideLayout"
	relTypeSlideMaster    = nsRelationships + "/slideMaster"
	relTypeTheme          = nsRelationships + "/theme"

	contentTypeSlide = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"

	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"
)

// opcPackage holds every part of the zip container keyed by part name
// (no leading slash), in the order they were read.
type opcPackage struct {
	parts map[string][]byte
	order []string
}

func readPackage(data []byte) (*opcPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	pkg := &opcPackage{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f == nil || strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		pkg.put(f.Name, b)
	}
	return pkg, nil
}

func (p *opcPackage) put(name string, b []byte) {
	name = strings.TrimPrefix(name, "/")
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = b
}

func (p *opcPackage) get(name string) ([]byte, error) {
	b, ok := p.parts[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	return b, nil
}

func (p *opcPackage) has(name string) bool {
	_, ok := p.parts[strings.TrimPrefix(name, "/")]
	return ok
}

func (p *opcPackage) write(w io.Writer) error {
	zw := zip.NewWriter(w)
	names := make([]string, 0, len(p.order))
	// The content types part goes first so streaming readers can sniff it.
	if p.has(contentTypesPart) {
		names = append(names, contentTypesPart)
	}
	for _, name := range p.order {
		if name != contentTypesPart {
			names = append(names, name)
		}
	}
	for _, name := range names {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return fmt.Errorf("write part %s: %w", name, err)
		}
	}
	return zw.Close()
}

// relsPartFor returns the relationships part name for a source part.
func relsPartFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveTarget turns a relationship target into a package part name.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(path.Dir(source), target)
}

// relativeTarget is the inverse of resolveTarget for parts under ppt/.
func relativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for j := i; j < len(from); j++ {
		if from[j] == "." || from[j] == "" {
			continue
		}
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}

type xRelationships struct {
	Rels []xRel `xml:"Relationship"`
}

type xRel struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// relationships maps relationship ids of a part to resolved target parts.
type relationships struct {
	source string
	byID   map[string]xRel
}

func (p *opcPackage) relsOf(source string) (relationships, error) {
	rels := relationships{source: source, byID: map[string]xRel{}}
	b, err := p.get(relsPartFor(source))
	if err != nil {
		return rels, nil
	}
	var x xRelationships
	if err := decodeXML(b, &x); err != nil {
		return rels, fmt.Errorf("parse rels of %s: %w", source, err)
	}
	for _, r := range x.Rels {
		rels.byID[r.ID] = r
	}
	return rels, nil
}

func (r relationships) target(id string) (string, bool) {
	rel, ok := r.byID[id]
	if !ok || rel.TargetMode == "External" {
		return "", false
	}
	return resolveTarget(r.source, rel.Target), true
}

func (r relationships) firstOfType(relType string) (string, bool) {
	for id, rel := range r.byID {
		if rel.Type == relType {
			return r.target(id)
		}
	}
	return "", false
}

// nextID returns an unused rIdN.
func (r relationships) nextID() string {
	for n := len(r.byID) + 1; ; n++ {
		id := fmt.Sprintf("rId%d", n)
		if _, taken := r.byID[id]; !taken {
			return id
		}
	}
}

// appendRelationship adds a relationship to the source part's rels,
// creating the rels part if it does not exist.
func (p *opcPackage) appendRelationship(source, id, relType, target string) {
	name := relsPartFor(source)
	entry := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, id, relType, escapeAttr(target))
	b, err := p.get(name)
	if err != nil {
		p.put(name, []byte(xml.Header+`<Relationships xmlns="`+nsPackageRels+`">`+entry+`</Relationships>`))
		return
	}
	p.put(name, insertBefore(b, "</Relationships>", entry))
}

func (p *opcPackage) addOverride(part, contentType string) {
	entry := fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, part, contentType)
	b, err := p.get(contentTypesPart)
	if err != nil {
		return
	}
	p.put(contentTypesPart, insertBefore(b, "</Types>", entry))
}

func insertBefore(doc []byte, closing, entry string) []byte {
	i := bytes.LastIndex(doc, []byte(closing))
	if i < 0 {
		return doc
	}
	out := make([]byte, 0, len(doc)+len(entry))
	out = append(out, doc[:i]...)
	out = append(out, entry...)
	return append(out, doc[i:]...)
}

// decodeXML unmarshals a part, honoring non-UTF-8 encoding declarations.
func decodeXML(b []byte, v interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader(b))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

func escapeAttr(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
