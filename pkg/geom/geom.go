// Package geom provides the integer geometry shared by the grid, template, and
// database packages.
//
// All coordinates are integers. Physical coordinates are database units
// (typically nanometers) and grid coordinates are tick indices; both use the
// same [Point] and [Rect] types, so the caller decides the coordinate space.
// Because nothing is floating point, mirroring and rotation are exact: a
// coordinate that lands on a grid tick before a transform lands on a tick
// after it.
package geom

import (
	"fmt"
	"strings"
)

// Point is an integer coordinate pair.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// String formats the point as [x, y].
func (p Point) String() string { return fmt.Sprintf("[%d, %d]", p.X, p.Y) }

// Rect is an axis-aligned rectangle with inclusive corners. Min is the
// lower-left corner and Max the upper-right corner. Degenerate rectangles
// (lines and points) are legal values: wires are stored as centerlines.
type Rect struct {
	Min, Max Point
}

// R builds a normalized rectangle from two arbitrary corners.
func R(x0, y0, x1, y1 int) Rect {
	return RectOf(Point{x0, y0}, Point{x1, y1})
}

// RectOf builds a normalized rectangle from two arbitrary corner points.
func RectOf(a, b Point) Rect {
	return Rect{
		Min: Point{min(a.X, b.X), min(a.Y, b.Y)},
		Max: Point{max(a.X, b.X), max(a.Y, b.Y)},
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() int { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() int { return r.Max.Y - r.Min.Y }

// IsPoint reports whether the rectangle has zero extent on both axes.
func (r Rect) IsPoint() bool { return r.Min == r.Max }

// IsDegenerate reports whether the rectangle has zero extent on at least one axis.
func (r Rect) IsDegenerate() bool { return r.Width() == 0 || r.Height() == 0 }

// Center2 returns twice the center point. Doubling keeps the result exact
// for rectangles with odd extents.
func (r Rect) Center2() Point {
	return Point{r.Min.X + r.Max.X, r.Min.Y + r.Max.Y}
}

// Translate returns r shifted by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		Min: Point{min(r.Min.X, s.Min.X), min(r.Min.Y, s.Min.Y)},
		Max: Point{max(r.Max.X, s.Max.X), max(r.Max.Y, s.Max.Y)},
	}
}

// Contains reports whether s lies entirely inside r (boundaries inclusive).
func (r Rect) Contains(s Rect) bool {
	return r.ContainsPoint(s.Min) && r.ContainsPoint(s.Max)
}

// ContainsPoint reports whether p lies inside r (boundaries inclusive).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// String formats the rectangle as [[x0, y0], [x1, y1]].
func (r Rect) String() string { return fmt.Sprintf("[%s, %s]", r.Min, r.Max) }

// Bounds returns the union of all rectangles and false if rects is empty.
func Bounds(rects ...Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Union(r)
	}
	return out, true
}

// Transform is one of the orientation changes an instance may carry.
type Transform int

const (
	// R0 is the identity.
	R0 Transform = iota
	// MX mirrors across the horizontal center line (y flips).
	MX
	// MY mirrors across the vertical center line (x flips).
	MY
	// R180 rotates by 180 degrees around the center (both flip).
	R180
)

var transformNames = [...]string{R0: "R0", MX: "MX", MY: "MY", R180: "R180"}

// String returns the conventional name of the transform.
func (t Transform) String() string {
	if t < R0 || t > R180 {
		return fmt.Sprintf("Transform(%d)", int(t))
	}
	return transformNames[t]
}

// ParseTransform parses "R0", "MX", "MY", or "R180" (case-insensitive).
// The empty string parses as R0.
func ParseTransform(s string) (Transform, error) {
	if s == "" {
		return R0, nil
	}
	for i, name := range transformNames {
		if strings.EqualFold(s, name) {
			return Transform(i), nil
		}
	}
	return R0, fmt.Errorf("unknown transform %q (must be one of R0, MX, MY, R180)", s)
}

// flips reports which axes the transform mirrors.
func (t Transform) flips() (x, y bool) {
	switch t {
	case MX:
		return false, true
	case MY:
		return true, false
	case R180:
		return true, true
	}
	return false, false
}

// ApplyPoint maps p through t, mirroring around the center of bounds.
func (t Transform) ApplyPoint(p Point, bounds Rect) Point {
	fx, fy := t.flips()
	c := bounds.Center2()
	if fx {
		p.X = c.X - p.X
	}
	if fy {
		p.Y = c.Y - p.Y
	}
	return p
}

// ApplyRect maps r through t, mirroring around the center of bounds. The
// result is normalized, so Min stays the lower-left corner.
func (t Transform) ApplyRect(r, bounds Rect) Rect {
	return RectOf(t.ApplyPoint(r.Min, bounds), t.ApplyPoint(r.Max, bounds))
}
