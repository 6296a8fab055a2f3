package database

import (
	"fmt"

	"github.com/matzehuels/cellforge/pkg/geom"
)

// Kind distinguishes the two routing primitives.
type Kind int

const (
	KindWire Kind = iota
	KindVia
)

func (k Kind) String() string {
	switch k {
	case KindWire:
		return "wire"
	case KindVia:
		return "via"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Element is a routing primitive owned by a design: a wire segment drawn as
// a centerline, or a via at a single tick joining a grid's two layers.
type Element struct {
	ID   int
	Kind Kind
	Grid string

	// Layer is the wire layer. For vias Layers holds the two joined layers
	// (horizontal first) and Via the via name.
	Layer  string
	Layers [2]string
	Via    string

	MN geom.Rect // grid indices; a point for vias
	XY geom.Rect // physical centerline; a point for vias

	Width     int
	Extension int
	Net       string
}

// Extent returns the physical centerline, so elements can be passed to
// grid.Grid.BBox.
func (e *Element) Extent() geom.Rect { return e.XY }

// Drawn returns the physical rectangle a wire covers once its width and
// extension are applied. Vias return their point.
func (e *Element) Drawn() geom.Rect {
	if e.Kind == KindVia {
		return e.XY
	}
	hw := e.Width / 2
	r := e.XY
	if r.Height() == 0 {
		return geom.R(r.Min.X-e.Extension, r.Min.Y-hw, r.Max.X+e.Extension, r.Max.Y+hw)
	}
	return geom.R(r.Min.X-hw, r.Min.Y-e.Extension, r.Max.X+hw, r.Max.Y+e.Extension)
}

func (e *Element) String() string {
	if e.Kind == KindVia {
		return fmt.Sprintf("via %s at %v (%s)", e.Via, e.MN.Min, e.Net)
	}
	return fmt.Sprintf("wire %s %v (%s)", e.Layer, e.MN, e.Net)
}

// DesignPin is a named, net-labeled region of a design's routing exposed as
// a connection point when the design becomes a template.
type DesignPin struct {
	Name  string
	Grid  string
	Layer string
	MN    geom.Rect
	XY    geom.Rect
	Net   string
}
