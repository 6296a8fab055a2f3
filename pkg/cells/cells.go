// Package cells generates standard logic cells from MOS templates.
//
// Every generator builds one design from four transistors arranged in two
// rows: NMOS at the bottom, mirrored PMOS on top. Placement goes through a
// [place.Plan] so the arrangement can be inspected and re-applied:
//
//	MP0 MP1
//	MN0 MN1
//
// Generators add the finished design to the library they are given:
//
//	lib, _ := database.NewLibrary("logic_generated", t)
//	d, err := cells.NAND(lib, 2, cells.Options{})
//	rec, err := templatedb.FromDesign(d)
//
// The technology must provide "nmos" and "pmos" MOS templates, a placement
// grid, and two routing grids (layers 1-2 and 2-3); the names are
// configurable through [Options].
package cells

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/grid"
	"github.com/matzehuels/cellforge/pkg/observability"
	"github.com/matzehuels/cellforge/pkg/place"
	"github.com/matzehuels/cellforge/pkg/tech"
	"github.com/matzehuels/cellforge/pkg/template"
)

// Options configures the generators.
type Options struct {
	NMOS      string // NMOS template, default "nmos"
	PMOS      string // PMOS template, default "pmos"
	Placement string // placement grid, default "placement_basic"
	R12       string // layer 1-2 routing grid, default "routing_12_cmos"
	R23       string // layer 2-3 routing grid, default "routing_23_cmos"

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.NMOS == "" {
		o.NMOS = "nmos"
	}
	if o.PMOS == "" {
		o.PMOS = "pmos"
	}
	if o.Placement == "" {
		o.Placement = "placement_basic"
	}
	if o.R12 == "" {
		o.R12 = "routing_12_cmos"
	}
	if o.R23 == "" {
		o.R23 = "routing_23_cmos"
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Generator builds a cell with nf fingers per transistor into lib.
type Generator func(lib *database.Library, nf int, opts Options) (*database.Design, error)

// recipe is the cell-specific part of a generator: which transistors to
// create and how to wire them once placed.
type recipe struct {
	quad  func(k *kit, nf int) (*quad, error)
	route func(k *kit, d *database.Design, q *quad, nf int) error
}

var recipes = map[string]recipe{
	"nand": {quad: (*kit).nandQuad, route: (*kit).nandRoute},
	"tinv": {quad: (*kit).tinvQuad, route: func(k *kit, d *database.Design, q *quad, nf int) error {
		return k.tinvRoute(d, q, nf, false)
	}},
	"tinv_hs": {quad: (*kit).tinvQuad, route: func(k *kit, d *database.Design, q *quad, nf int) error {
		return k.tinvRoute(d, q, nf, true)
	}},
}

// Kinds returns the names of the available cell generators, sorted.
func Kinds() []string {
	return slices.Sorted(maps.Keys(recipes))
}

// Lookup returns the generator for kind.
func Lookup(kind string) (Generator, error) {
	if _, ok := recipes[kind]; !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown cell %q (available: %s)", kind, strings.Join(Kinds(), ", "))
	}
	return func(lib *database.Library, nf int, opts Options) (*database.Design, error) {
		return generate(lib, kind, nf, opts)
	}, nil
}

// Plan returns the unapplied placement plan of a cell, for inspection.
func Plan(t *tech.Tech, kind string, nf int, opts Options) (*place.Plan, error) {
	r, ok := recipes[kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown cell %q (available: %s)", kind, strings.Join(Kinds(), ", "))
	}
	if err := checkFingers(kind, nf); err != nil {
		return nil, err
	}
	k, err := newKit(t, opts)
	if err != nil {
		return nil, err
	}
	q, err := r.quad(k, nf)
	if err != nil {
		return nil, err
	}
	if err := q.layout(); err != nil {
		return nil, err
	}
	return q.plan, nil
}

func generate(lib *database.Library, kind string, nf int, opts Options) (*database.Design, error) {
	r := recipes[kind]
	if err := checkFingers(kind, nf); err != nil {
		return nil, err
	}
	return build(lib, CellName(kind, nf), opts, func(k *kit, d *database.Design) error {
		q, err := r.quad(k, nf)
		if err != nil {
			return err
		}
		if err := q.layout(); err != nil {
			return err
		}
		if err := q.plan.Apply(d, k.pg); err != nil {
			return err
		}
		return r.route(k, d, q, nf)
	})
}

// CellName returns the design name for a cell kind and finger count, e.g.
// "nand_2x".
func CellName(kind string, nf int) string {
	return fmt.Sprintf("%s_%dx", kind, nf)
}

// kit holds the templates and grids a generator works with.
type kit struct {
	tech       *tech.Tech
	pg         *grid.Grid
	r12, r23   *grid.RoutingGrid
	nmos, pmos *template.Template
	log        *log.Logger
}

func newKit(t *tech.Tech, opts Options) (*kit, error) {
	opts.SetDefaults()
	if t == nil {
		return nil, errors.New(errors.ErrCodeMissingTemplate, "no technology")
	}
	k := &kit{tech: t, log: opts.Logger}
	var err error
	if k.nmos, err = t.Template(opts.NMOS); err != nil {
		return nil, err
	}
	if k.pmos, err = t.Template(opts.PMOS); err != nil {
		return nil, err
	}
	if k.pg, err = t.Grid(opts.Placement); err != nil {
		return nil, err
	}
	if k.r12, err = t.RoutingGrid(opts.R12); err != nil {
		return nil, err
	}
	if k.r23, err = t.RoutingGrid(opts.R23); err != nil {
		return nil, err
	}
	return k, nil
}

// quad is the two-by-two transistor arrangement shared by every cell.
type quad struct {
	in0, ip0, in1, ip1 *template.Instance
	plan               *place.Plan
}

// mos generates one transistor.
func (k *kit) mos(tmpl *template.Template, name string, tr geom.Transform, params template.Params, nets template.NetMap) (*template.Instance, error) {
	return tmpl.Generate(name,
		template.WithTransform(tr),
		template.WithParams(params),
		template.WithNets(nets),
	)
}

// layout plans the arrangement: MN1 right of MN0, MP0 on top of MN0, MP1
// right of MP0.
func (q *quad) layout() error {
	q.plan = place.New()
	if err := q.plan.At(q.in0, geom.Pt(0, 0)); err != nil {
		return err
	}
	if err := q.plan.Relative(q.ip0, q.in0, grid.TopLeft); err != nil {
		return err
	}
	if err := q.plan.Relative(q.in1, q.in0, grid.BottomRight); err != nil {
		return err
	}
	return q.plan.Relative(q.ip1, q.ip0, grid.BottomRight)
}

// pinMN returns one end of an instance pin on g: the lower corner when hi
// is false, the upper corner otherwise.
func pinMN(g *grid.RoutingGrid, inst *template.Instance, id template.PinID, hi bool) (geom.Point, error) {
	r, err := g.PinMN(inst, id)
	if err != nil {
		return geom.Point{}, err
	}
	if hi {
		return r.Max, nil
	}
	return r.Min, nil
}

// ends collects pin ends, stopping at the first error.
type ends struct {
	g   *grid.RoutingGrid
	err error
}

func (e *ends) lo(inst *template.Instance, id template.PinID) geom.Point {
	return e.at(inst, id, false)
}

func (e *ends) hi(inst *template.Instance, id template.PinID) geom.Point {
	return e.at(inst, id, true)
}

func (e *ends) at(inst *template.Instance, id template.PinID, hi bool) geom.Point {
	if e.err != nil {
		return geom.Point{}
	}
	p, err := pinMN(e.g, inst, id, hi)
	if err != nil {
		e.err = err
	}
	return p
}

// wires returns the wire elements of a route, dropping vias.
func wires(elems []*database.Element) []grid.Extent {
	var out []grid.Extent
	for _, e := range elems {
		if e.Kind == database.KindWire {
			out = append(out, e)
		}
	}
	return out
}

// pin exposes the bounding box of elems as a design pin.
func pin(d *database.Design, g *grid.RoutingGrid, name, net string, elems []*database.Element) error {
	region, err := g.BBox(wires(elems)...)
	if err != nil {
		return fmt.Errorf("pin %s: %w", name, err)
	}
	_, err = d.Pin(name, g, region, net)
	return err
}

// rails routes VSS along the NMOS rails and VDD along the PMOS rails on the
// layer 1-2 grid and exposes both as pins.
func (k *kit) rails(d *database.Design, q *quad) error {
	e := &ends{g: k.r12}
	vss := []geom.Point{e.lo(q.in0, "RAIL"), e.hi(q.in1, "RAIL")}
	vdd := []geom.Point{e.lo(q.ip0, "RAIL"), e.hi(q.ip1, "RAIL")}
	if e.err != nil {
		return e.err
	}
	for _, r := range []struct {
		name string
		mn   []geom.Point
	}{{"VSS", vss}, {"VDD", vdd}} {
		elems, err := d.Route(k.r12, r.mn, database.WithNet(r.name))
		if err != nil {
			return fmt.Errorf("%s rail: %w", r.name, err)
		}
		if err := pin(d, k.r12, r.name, "", elems); err != nil {
			return err
		}
	}
	return nil
}

// build runs fn against a fresh design and adds the design to lib only when
// fn succeeds.
func build(lib *database.Library, name string, opts Options, fn func(*kit, *database.Design) error) (*database.Design, error) {
	if lib.Tech() == nil {
		return nil, errors.New(errors.ErrCodeMissingTemplate, "library %s has no technology", lib.Name())
	}
	k, err := newKit(lib.Tech(), opts)
	if err != nil {
		return nil, err
	}
	if _, exists := lib.Design(name); exists {
		return nil, errors.New(errors.ErrCodeInvalidInput, "library %s already has a design named %s", lib.Name(), name)
	}
	d, err := database.NewDesign(name, k.tech)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	start := time.Now()
	hooks := observability.Generator()
	hooks.OnGenerateStart(ctx, name)
	k.log.Debug("generating cell", "cell", name)
	err = fn(k, d)
	if err == nil {
		err = lib.Append(d)
	} else {
		err = fmt.Errorf("%s: %w", name, err)
	}
	hooks.OnGenerateComplete(ctx, name, len(d.Elements()), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	k.log.Info("generated cell", "cell", name, "instances", len(d.Instances()), "elements", len(d.Elements()), "pins", PinNames(d))
	return d, nil
}

// checkFingers requires a positive, even finger count: every cell ties the
// source of some transistors to the rail.
func checkFingers(kind string, nf int) error {
	if nf < 2 || nf%2 != 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "%s: nf must be a positive even number, got %d", kind, nf)
	}
	return nil
}

// PinNames returns the pin names of d in creation order.
func PinNames(d *database.Design) []string {
	pins := d.Pins()
	out := make([]string, len(pins))
	for i, p := range pins {
		out[i] = p.Name
	}
	return out
}
