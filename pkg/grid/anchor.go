package grid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/template"
)

// Anchor names a corner of an instance footprint.
type Anchor int

const (
	BottomLeft Anchor = iota
	BottomRight
	TopLeft
	TopRight
)

var anchorNames = [...]string{
	BottomLeft:  "bottom_left",
	BottomRight: "bottom_right",
	TopLeft:     "top_left",
	TopRight:    "top_right",
}

func (a Anchor) String() string {
	if a < BottomLeft || a > TopRight {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// ParseAnchor parses an anchor name such as "top_left".
func ParseAnchor(s string) (Anchor, error) {
	for i, name := range anchorNames {
		if strings.EqualFold(s, name) {
			return Anchor(i), nil
		}
	}
	return BottomLeft, errors.New(errors.ErrCodeInvalidInput, "unknown anchor %q", s)
}

// Corner returns the grid index of an anchor of a placed instance. The
// footprint is read on every call.
func (g *Grid) Corner(inst *template.Instance, a Anchor) (geom.Point, error) {
	b, err := inst.Bounds()
	if err != nil {
		return geom.Point{}, err
	}
	var xy geom.Point
	switch a {
	case BottomLeft:
		xy = b.Min
	case BottomRight:
		xy = geom.Pt(b.Max.X, b.Min.Y)
	case TopLeft:
		xy = geom.Pt(b.Min.X, b.Max.Y)
	case TopRight:
		xy = b.Max
	default:
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "unknown anchor %v", a)
	}
	return g.MN(xy), nil
}

// BottomLeft returns the grid index of the lower-left corner.
func (g *Grid) BottomLeft(inst *template.Instance) (geom.Point, error) {
	return g.Corner(inst, BottomLeft)
}

// BottomRight returns the grid index of the lower-right corner.
func (g *Grid) BottomRight(inst *template.Instance) (geom.Point, error) {
	return g.Corner(inst, BottomRight)
}

// TopLeft returns the grid index of the upper-left corner.
func (g *Grid) TopLeft(inst *template.Instance) (geom.Point, error) {
	return g.Corner(inst, TopLeft)
}

// TopRight returns the grid index of the upper-right corner.
func (g *Grid) TopRight(inst *template.Instance) (geom.Point, error) {
	return g.Corner(inst, TopRight)
}

// HeightVec returns the grid offset from the bottom to the top of the
// footprint, (0, height).
func (g *Grid) HeightVec(inst *template.Instance) (geom.Point, error) {
	lo, err := g.BottomLeft(inst)
	if err != nil {
		return geom.Point{}, err
	}
	hi, err := g.TopLeft(inst)
	if err != nil {
		return geom.Point{}, err
	}
	return hi.Sub(lo), nil
}

// WidthVec returns the grid offset from the left to the right of the
// footprint, (width, 0).
func (g *Grid) WidthVec(inst *template.Instance) (geom.Point, error) {
	lo, err := g.BottomLeft(inst)
	if err != nil {
		return geom.Point{}, err
	}
	hi, err := g.BottomRight(inst)
	if err != nil {
		return geom.Point{}, err
	}
	return hi.Sub(lo), nil
}
