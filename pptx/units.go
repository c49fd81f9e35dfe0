package pptx

// Length is a distance in English Metric Units, the native OOXML unit.
type Length int64

const (
	emuPerInch  = 914400
	emuPerPoint = 12700
)

// Inches converts inches to EMU.
func Inches(in float64) Length {
	return Length(in * emuPerInch)
}

// Pt converts points to EMU.
func Pt(pt float64) Length {
	return Length(pt * emuPerPoint)
}

// Inches reports the length in inches.
func (l Length) Inches() float64 {
	return float64(l) / emuPerInch
}

// centipoints is the hundredths-of-a-point unit used by sz and spcPts.
func (l Length) centipoints() int64 {
	return int64(l) * 100 / emuPerPoint
}

// Rect is a shape frame: offset plus extent.
type Rect struct {
	X, Y   Length
	CX, CY Length
}

// CenterX is the horizontal midpoint of the frame.
func (r Rect) CenterX() Length {
	return r.X + r.CX/2
}
