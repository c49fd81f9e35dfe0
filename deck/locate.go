package deck

import (
	"sort"

	"github.com/richinex/slidesmith/pptx"
)

// footerBand is the share of slide height, measured from the top, below
// which a region counts as footer decoration.
const footerBand = 0.9

// LocateTextRegions returns the slide's text-capable shapes from top to
// bottom, leaving out shapes that start in the bottom tenth of the slide.
// A shape whose geometry cannot be resolved ends the scan; the shapes
// collected before it are still returned.
func LocateTextRegions(slide *pptx.Slide, slideHeight pptx.Length) []*pptx.Shape {
	type region struct {
		shape *pptx.Shape
		top   pptx.Length
	}
	limit := pptx.Length(float64(slideHeight) * footerBand)

	var found []region
	for _, sh := range slide.Shapes() {
		if !sh.HasTextFrame() {
			continue
		}
		frame, err := sh.Frame()
		if err != nil {
			break
		}
		if frame.Y > limit {
			continue
		}
		found = append(found, region{shape: sh, top: frame.Y})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].top < found[j].top })
	out := make([]*pptx.Shape, len(found))
	for i, r := range found {
		out[i] = r.shape
	}
	return out
}
