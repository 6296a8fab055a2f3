package database

import (
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/grid"
)

// RouteOption configures routing calls.
type RouteOption func(*routeOptions)

type routeOptions struct {
	vias []bool
	net  string
}

// WithVias requests a via at each endpoint whose tag is true. The number of
// tags must match the number of points.
func WithVias(tags ...bool) RouteOption {
	return func(o *routeOptions) { o.vias = tags }
}

// WithNet labels every created element with net.
func WithNet(net string) RouteOption {
	return func(o *routeOptions) { o.net = net }
}

func (d *Design) routeOptions(n int, opts []RouteOption) (routeOptions, error) {
	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.vias != nil && len(o.vias) != n {
		return o, errors.New(errors.ErrCodeInvalidInput, "%d via tags for %d points", len(o.vias), n)
	}
	if o.net != "" {
		if err := errors.ValidateNetName(o.net); err != nil {
			return o, err
		}
	}
	return o, nil
}

func newVia(g *grid.RoutingGrid, mn geom.Point, net string) *Element {
	xy := g.XY(mn)
	return &Element{
		Kind:   KindVia,
		Grid:   g.Name,
		Layers: [2]string{g.HLayer, g.VLayer},
		Via:    g.Via,
		MN:     geom.Rect{Min: mn, Max: mn},
		XY:     geom.Rect{Min: xy, Max: xy},
		Net:    net,
	}
}

func newWire(g *grid.RoutingGrid, a, b geom.Point, net string) (*Element, error) {
	dir, err := g.Segment(a, b)
	if err != nil {
		return nil, err
	}
	return &Element{
		Kind:      KindWire,
		Grid:      g.Name,
		Layer:     g.Layer(dir),
		MN:        geom.RectOf(a, b),
		XY:        geom.RectOf(g.XY(a), g.XY(b)),
		Width:     g.Width(dir),
		Extension: g.Extension(dir),
		Net:       net,
	}, nil
}

// buildPath creates the wires through mn with optional vias, in the order
// [via0] wire0 [via1] wire1 ... [viaN].
func buildPath(g *grid.RoutingGrid, mn []geom.Point, o routeOptions) ([]*Element, error) {
	var out []*Element
	for i, p := range mn {
		if o.vias != nil && o.vias[i] {
			out = append(out, newVia(g, p, o.net))
		}
		if i == len(mn)-1 {
			break
		}
		w, err := newWire(g, p, mn[i+1], o.net)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "segment %d", i)
		}
		out = append(out, w)
	}
	return out, nil
}

// Route connects consecutive grid points with straight wires. Each pair must
// share a row (horizontal wire on the grid's HLayer) or a column (vertical
// wire on VLayer). The created elements are returned in path order.
//
// Points are used exactly as given; they are grid indices and need no
// snapping. Overlapping or duplicate wires are not merged.
func (d *Design) Route(g *grid.RoutingGrid, mn []geom.Point, opts ...RouteOption) ([]*Element, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "route: routing grid is required")
	}
	if len(mn) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "route needs at least 2 points, got %d", len(mn))
	}
	o, err := d.routeOptions(len(mn), opts)
	if err != nil {
		return nil, err
	}
	elems, err := buildPath(g, mn, o)
	if err != nil {
		return nil, err
	}
	d.commit(elems)
	return elems, nil
}

// Via places a single via at mn.
func (d *Design) Via(g *grid.RoutingGrid, mn geom.Point, opts ...RouteOption) (*Element, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "via: routing grid is required")
	}
	o, err := d.routeOptions(1, opts)
	if err != nil {
		return nil, err
	}
	v := newVia(g, mn, o.net)
	d.commit([]*Element{v})
	return v, nil
}

// Track selects a routing track: a vertical track at column X or a
// horizontal track at row Y. Exactly one must be set.
type Track struct {
	X, Y *int
}

// AtColumn returns a vertical track at grid column x.
func AtColumn(x int) Track { return Track{X: &x} }

// AtRow returns a horizontal track at grid row y.
func AtRow(y int) Track { return Track{Y: &y} }

// project returns the point on the track perpendicular to p.
func (t Track) project(p geom.Point) geom.Point {
	if t.X != nil {
		return geom.Pt(*t.X, p.Y)
	}
	return geom.Pt(p.X, *t.Y)
}

// TrackRoute is the result of [Design.RouteViaTrack].
type TrackRoute struct {
	// Branches holds, per endpoint, the perpendicular wire and the via at
	// the track. An endpoint already on the track has only the via.
	Branches [][]*Element
	// Track is the wire along the track spanning every branch.
	Track *Element
}

// All returns every element of the route in creation order.
func (r *TrackRoute) All() []*Element {
	var out []*Element
	for _, b := range r.Branches {
		out = append(out, b...)
	}
	return append(out, r.Track)
}

// RouteViaTrack connects every endpoint to a shared track. Each endpoint is
// joined to the track by a perpendicular branch ending in a via, and one
// wire along the track spans all branch projections.
//
// WithVias tags, if given, request an additional via at the corresponding
// endpoint.
func (d *Design) RouteViaTrack(g *grid.RoutingGrid, mn []geom.Point, track Track, opts ...RouteOption) (*TrackRoute, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "route via track: routing grid is required")
	}
	if (track.X == nil) == (track.Y == nil) {
		return nil, errors.New(errors.ErrCodeDisjointTrack, "track must fix exactly one of x or y")
	}
	if len(mn) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "route via track needs at least 2 points, got %d", len(mn))
	}
	o, err := d.routeOptions(len(mn), opts)
	if err != nil {
		return nil, err
	}

	route := &TrackRoute{Branches: make([][]*Element, len(mn))}
	proj := make([]geom.Point, len(mn))
	for i, p := range mn {
		proj[i] = track.project(p)
		var branch []*Element
		if o.vias != nil && o.vias[i] && p != proj[i] {
			branch = append(branch, newVia(g, p, o.net))
		}
		if p != proj[i] {
			w, err := newWire(g, p, proj[i], o.net)
			if err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err, "branch %d", i)
			}
			branch = append(branch, w)
		}
		route.Branches[i] = append(branch, newVia(g, proj[i], o.net))
	}

	lo := slices.MinFunc(proj, comparePoints)
	hi := slices.MaxFunc(proj, comparePoints)
	if lo == hi {
		return nil, errors.New(errors.ErrCodeDisjointTrack, "all endpoints project to %v on the track", lo)
	}
	route.Track, err = newWire(g, lo, hi, o.net)
	if err != nil {
		return nil, err
	}

	d.commit(route.All())
	return route, nil
}

func comparePoints(a, b geom.Point) int {
	if a.X != b.X {
		return a.X - b.X
	}
	return a.Y - b.Y
}
