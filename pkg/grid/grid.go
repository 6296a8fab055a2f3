// Package grid maps between physical database units and abstract grid
// indices.
//
// A [Grid] pairs two periodic [Axis] tick sequences with a snap policy.
// Placement uses plain grids; routing uses a [RoutingGrid], which adds the
// layer assignment for horizontal and vertical wires and the via that joins
// them. All conversions are integer and exact; a coordinate that must lie on
// a tick but does not is reported as UNALIGNED_ENDPOINT rather than silently
// snapped.
//
// Anchor queries ([Grid.TopLeft], [Grid.HeightVec], ...) read a placed
// instance's current footprint on every call, so they always reflect the
// latest placement.
package grid

import (
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/template"
)

// Grid is a named two-dimensional grid.
type Grid struct {
	Name string
	X, Y Axis
	Snap Snap
}

// New validates and returns a grid.
func New(name string, x, y Axis, snap Snap) (*Grid, error) {
	g := &Grid{Name: name, X: x, Y: y, Snap: snap}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the name and both axes.
func (g *Grid) Validate() error {
	if err := errors.ValidateName("grid", g.Name); err != nil {
		return err
	}
	if err := g.X.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "grid %s: x axis", g.Name)
	}
	if err := g.Y.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "grid %s: y axis", g.Name)
	}
	return nil
}

// XY returns the physical coordinate of grid index mn.
func (g *Grid) XY(mn geom.Point) geom.Point {
	return geom.Pt(g.X.Phys(mn.X), g.Y.Phys(mn.Y))
}

// MN returns the grid index of xy under the grid's snap policy.
func (g *Grid) MN(xy geom.Point) geom.Point {
	return geom.Pt(g.X.Index(xy.X, g.Snap), g.Y.Index(xy.Y, g.Snap))
}

// MNExact returns the grid index of xy, which must lie on a tick.
func (g *Grid) MNExact(xy geom.Point) (geom.Point, error) {
	m, okX := g.X.IndexExact(xy.X)
	n, okY := g.Y.IndexExact(xy.Y)
	if !okX || !okY {
		return geom.Point{}, errors.New(errors.ErrCodeUnalignedEndpoint, "%v is not on a tick of grid %s", xy, g.Name)
	}
	return geom.Pt(m, n), nil
}

// RectXY converts a grid rectangle to physical coordinates.
func (g *Grid) RectXY(mn geom.Rect) geom.Rect {
	return geom.RectOf(g.XY(mn.Min), g.XY(mn.Max))
}

// RectMN converts a physical rectangle to grid indices, snapping each corner.
func (g *Grid) RectMN(xy geom.Rect) geom.Rect {
	return geom.RectOf(g.MN(xy.Min), g.MN(xy.Max))
}

// RectMNExact converts a physical rectangle whose corners lie on ticks.
func (g *Grid) RectMNExact(xy geom.Rect) (geom.Rect, error) {
	lo, err := g.MNExact(xy.Min)
	if err != nil {
		return geom.Rect{}, err
	}
	hi, err := g.MNExact(xy.Max)
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.RectOf(lo, hi), nil
}

// PinMN returns the grid rectangle of a placed instance's pin. The pin edges
// must lie on ticks of g.
func (g *Grid) PinMN(inst *template.Instance, id template.PinID) (geom.Rect, error) {
	p, err := inst.Pin(id)
	if err != nil {
		return geom.Rect{}, err
	}
	mn, err := g.RectMNExact(p.Rect)
	if err != nil {
		return geom.Rect{}, errors.Wrap(errors.ErrCodeUnalignedEndpoint, err, "pin %s/%s", inst.Name(), id)
	}
	return mn, nil
}

// Extent is implemented by anything with a physical footprint, such as the
// wires and vias of a design.
type Extent interface {
	Extent() geom.Rect
}

// BBox returns the smallest grid rectangle enclosing every item. Corners that
// fall between ticks are widened outwards.
func (g *Grid) BBox(items ...Extent) (geom.Rect, error) {
	if len(items) == 0 {
		return geom.Rect{}, errors.New(errors.ErrCodeInvalidInput, "bounding box of no elements")
	}
	r := items[0].Extent()
	for _, it := range items[1:] {
		r = r.Union(it.Extent())
	}
	lo := geom.Pt(g.X.Index(r.Min.X, SnapDown), g.Y.Index(r.Min.Y, SnapDown))
	hi := geom.Pt(g.X.ceil(r.Max.X), g.Y.ceil(r.Max.Y))
	return geom.Rect{Min: lo, Max: hi}, nil
}

// ceil returns the index of the smallest tick >= c.
func (a Axis) ceil(c int) int {
	i := a.floor(c)
	if a.Phys(i) != c {
		i++
	}
	return i
}
