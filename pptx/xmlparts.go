package pptx

import (
	"encoding/xml"
	"strconv"
)

// xIDRef is a list entry carrying both a numeric id and an r:id
// (sldId, sldMasterId, sldLayoutId). Both attributes share the local name
// "id", so they are told apart by namespace here.
type xIDRef struct {
	ID  string
	RID string
}

func (x *xIDRef) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		if a.Name.Local != "id" {
			continue
		}
		if a.Name.Space == nsRelationships {
			x.RID = a.Value
		} else if a.Name.Space == "" {
			x.ID = a.Value
		}
	}
	return d.Skip()
}

type xPresentation struct {
	SldMasterIDs []xIDRef `xml:"sldMasterIdLst>sldMasterId"`
	SldIDs       []xIDRef `xml:"sldIdLst>sldId"`
	SldSz        struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

// xSlidePart covers the bits of sld, sldLayout and sldMaster read here.
type xSlidePart struct {
	CSld struct {
		Name   string `xml:"name,attr"`
		SpTree struct {
			Shapes []xSp `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
	SldLayoutIDs []xIDRef `xml:"sldLayoutIdLst>sldLayoutId"`
}

type xSp struct {
	NvSpPr struct {
		CNvPr struct {
			ID   int    `xml:"id,attr"`
			Name string `xml:"name,attr"`
		} `xml:"cNvPr"`
		NvPr struct {
			Ph *xPh `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	SpPr struct {
		Xfrm *xXfrm `xml:"xfrm"`
	} `xml:"spPr"`
}

type xPh struct {
	Type   string `xml:"type,attr"`
	Idx    string `xml:"idx,attr"`
	Orient string `xml:"orient,attr"`
	Sz     string `xml:"sz,attr"`
}

func (p *xPh) placeholder() Placeholder {
	idx, _ := strconv.Atoi(p.Idx)
	return Placeholder{Type: p.Type, Idx: idx, Orient: p.Orient, Size: p.Sz}
}

type xXfrm struct {
	Off *struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext *struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

// rect returns the frame when both offset and extent are present.
func (x *xXfrm) rect() *Rect {
	if x == nil || x.Off == nil || x.Ext == nil {
		return nil
	}
	return &Rect{X: Length(x.Off.X), Y: Length(x.Off.Y), CX: Length(x.Ext.Cx), CY: Length(x.Ext.Cy)}
}
