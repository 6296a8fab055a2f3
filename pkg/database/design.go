package database

import (
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/grid"
	"github.com/matzehuels/cellforge/pkg/tech"
	"github.com/matzehuels/cellforge/pkg/template"
)

// Design is a cell under construction: placed instances, routing elements,
// and pins, each kept in insertion order.
//
// Every mutating method either applies fully or leaves the design unchanged.
// A Design is not safe for concurrent use.
type Design struct {
	name    string
	libName string
	tech    *tech.Tech
	lib     *Library

	instances []*template.Instance
	instIndex map[string]*template.Instance

	elements []*Element
	nextID   int

	pins     []*DesignPin
	pinIndex map[string]*DesignPin
}

// NewDesign creates an empty design. t may be nil for designs that only use
// grids and templates constructed by hand.
func NewDesign(name string, t *tech.Tech) (*Design, error) {
	if err := errors.ValidateName("design", name); err != nil {
		return nil, err
	}
	return &Design{
		name:      name,
		tech:      t,
		instIndex: make(map[string]*template.Instance),
		pinIndex:  make(map[string]*DesignPin),
	}, nil
}

// Name returns the cell name.
func (d *Design) Name() string { return d.name }

// LibraryName returns the name of the owning library, or "".
func (d *Design) LibraryName() string { return d.libName }

// Tech returns the technology handle the design was created with.
func (d *Design) Tech() *tech.Tech { return d.tech }

// Instances returns the registered instances in placement order.
func (d *Design) Instances() []*template.Instance { return slices.Clone(d.instances) }

// Instance looks up a registered instance by name.
func (d *Design) Instance(name string) (*template.Instance, bool) {
	inst, ok := d.instIndex[name]
	return inst, ok
}

// Elements returns the routing elements in creation order.
func (d *Design) Elements() []*Element { return slices.Clone(d.elements) }

// Pins returns the design pins in creation order.
func (d *Design) Pins() []*DesignPin { return slices.Clone(d.pins) }

// PinByName looks up a pin.
func (d *Design) PinByName(name string) (*DesignPin, bool) {
	p, ok := d.pinIndex[name]
	return p, ok
}

// Place positions inst with its lower-left corner at grid index mn of g and
// registers it with the design.
//
// Placing an instance that is already registered moves it; it keeps its
// position in the instance order. Nothing derived from the old position is
// recomputed: routes and pins already built stay where they are, and
// instances placed relative to it are not moved.
//
// Placement does not check for overlap with other instances.
func (d *Design) Place(g *grid.Grid, inst *template.Instance, mn geom.Point) error {
	if g == nil || inst == nil {
		return errors.New(errors.ErrCodeInvalidInput, "place: grid and instance are required")
	}
	if other, ok := d.instIndex[inst.Name()]; ok && other != inst {
		return errors.New(errors.ErrCodeInvalidInput, "design %s already has a different instance named %s", d.name, inst.Name())
	}
	inst.SetOrigin(g.XY(mn))
	if _, ok := d.instIndex[inst.Name()]; !ok {
		d.instances = append(d.instances, inst)
		d.instIndex[inst.Name()] = inst
	}
	return nil
}

// Bounds returns the union of all placed instance footprints and routing
// centerlines, and false for an empty design.
func (d *Design) Bounds() (geom.Rect, bool) {
	var rects []geom.Rect
	for _, inst := range d.instances {
		if b, err := inst.Bounds(); err == nil {
			rects = append(rects, b)
		}
	}
	for _, e := range d.elements {
		rects = append(rects, e.XY)
	}
	return geom.Bounds(rects...)
}

// commit assigns IDs and appends a fully built batch of elements.
func (d *Design) commit(elems []*Element) {
	for _, e := range elems {
		e.ID = d.nextID
		d.nextID++
	}
	d.elements = append(d.elements, elems...)
}

// PinOption configures [Design.Pin].
type PinOption func(*pinOptions)

type pinOptions struct {
	layer string
}

// WithPinLayer overrides the layer the pin is drawn on.
func WithPinLayer(layer string) PinOption {
	return func(o *pinOptions) { o.layer = layer }
}

// Pin creates a named pin over a grid region, typically the bounding box of
// the routing that carries the net. An empty net defaults to the pin name.
//
// The layer follows the region's orientation on g: HLayer for a row, VLayer
// for a column, and the grid's primary layer for a two-dimensional region.
func (d *Design) Pin(name string, g *grid.RoutingGrid, region geom.Rect, net string, opts ...PinOption) (*DesignPin, error) {
	if err := errors.ValidateName("pin", name); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pin %s: routing grid is required", name)
	}
	if _, ok := d.pinIndex[name]; ok {
		return nil, errors.New(errors.ErrCodeDuplicatePin, "design %s already has a pin named %s", d.name, name)
	}
	if net == "" {
		net = name
	}
	if err := errors.ValidateNetName(net); err != nil {
		return nil, err
	}
	var o pinOptions
	for _, opt := range opts {
		opt(&o)
	}

	region = geom.RectOf(region.Min, region.Max)
	dir, err := g.Orientation(region)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "pin %s", name)
	}
	layer := g.Layer(dir)
	if o.layer != "" {
		layer = o.layer
	}

	p := &DesignPin{
		Name:  name,
		Grid:  g.Name,
		Layer: layer,
		MN:    region,
		XY:    g.RectXY(region),
		Net:   net,
	}
	d.pins = append(d.pins, p)
	d.pinIndex[name] = p
	return p, nil
}
