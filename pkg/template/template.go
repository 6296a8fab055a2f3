// Package template defines layout templates and the instances generated from
// them.
//
// A [Template] is an immutable, parametrized description of a building block:
// a parameter domain, a declared pin set, and a pure shape function that maps
// resolved parameters to a boundary and pin geometry. Templates are shared by
// every instance generated from them and are safe for concurrent reads.
//
// An [Instance] is one generated occurrence of a template. Its shape is
// computed once at generation time. The only mutable state of an instance is
// its placement origin and its net-name overrides.
//
//	inv, _ := tmpl.Generate("MN0",
//	    template.WithParams(template.Params{"nf": 2}),
//	    template.WithTransform(geom.MX),
//	    template.WithNets(template.NetMap{"G": "A"}),
//	)
package template

import (
	"maps"
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
)

// PinID names a pin within a template's declared pin set.
type PinID string

// NetMap overrides the net names of an instance's pins.
type NetMap map[PinID]string

// Pin is one pin of a shape. Rect is in template-local physical coordinates
// and may be degenerate (a line along a wire track).
type Pin struct {
	Rect  geom.Rect
	Layer string
	Net   string
}

// Shape is the result of evaluating a template's shape function.
type Shape struct {
	Bounds geom.Rect
	Pins   map[PinID]Pin
}

// ShapeFunc computes a shape from resolved parameters. It must be pure: the
// same parameters always produce the same shape.
type ShapeFunc func(Params) (Shape, error)

// Config describes a template to [New].
type Config struct {
	Params []ParamSpec
	Pins   []PinID
	Shape  ShapeFunc

	// Check validates cross-parameter constraints after the individual
	// specs have passed. Optional.
	Check func(Params) error
}

// Template is an immutable parametrized layout block.
type Template struct {
	name   string
	params []ParamSpec
	pins   []PinID
	shape  ShapeFunc
	check  func(Params) error
}

// New creates a template. The parameter specs and pin list are copied.
func New(name string, cfg Config) (*Template, error) {
	if err := errors.ValidateName("template", name); err != nil {
		return nil, err
	}
	if cfg.Shape == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "template %s has no shape function", name)
	}
	seen := make(map[PinID]bool, len(cfg.Pins))
	for _, id := range cfg.Pins {
		if seen[id] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "template %s declares pin %s twice", name, id)
		}
		seen[id] = true
	}
	return &Template{
		name:   name,
		params: slices.Clone(cfg.Params),
		pins:   slices.Clone(cfg.Pins),
		shape:  cfg.Shape,
		check:  cfg.Check,
	}, nil
}

// NewFixed creates a parameterless template that always yields shape. The
// declared pin set is the shape's pins in sorted order.
func NewFixed(name string, shape Shape) (*Template, error) {
	frozen := cloneShape(shape)
	return New(name, Config{
		Pins: slices.Sorted(maps.Keys(frozen.Pins)),
		Shape: func(Params) (Shape, error) {
			return cloneShape(frozen), nil
		},
	})
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// ParamSpecs returns a copy of the parameter domain.
func (t *Template) ParamSpecs() []ParamSpec { return slices.Clone(t.params) }

// PinIDs returns a copy of the declared pin set.
func (t *Template) PinIDs() []PinID { return slices.Clone(t.pins) }

// HasPin reports whether id is in the declared pin set.
func (t *Template) HasPin(id PinID) bool { return slices.Contains(t.pins, id) }

// Shape evaluates the shape function for p after validating p against the
// parameter domain.
func (t *Template) Shape(p Params) (Shape, Params, error) {
	resolved, err := resolve(t.params, p)
	if err != nil {
		return Shape{}, nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "template %s", t.name)
	}
	if t.check != nil {
		if err := t.check(resolved); err != nil {
			return Shape{}, nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "template %s", t.name)
		}
	}
	shape, err := t.shape(resolved)
	if err != nil {
		return Shape{}, nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "template %s", t.name)
	}
	for id := range shape.Pins {
		if !t.HasPin(id) {
			return Shape{}, nil, errors.New(errors.ErrCodeInternal, "template %s produced undeclared pin %s", t.name, id)
		}
	}
	return shape, resolved, nil
}

// GenerateOption configures [Template.Generate].
type GenerateOption func(*generateOptions)

type generateOptions struct {
	transform geom.Transform
	params    Params
	nets      NetMap
}

// WithTransform sets the instance orientation.
func WithTransform(t geom.Transform) GenerateOption {
	return func(o *generateOptions) { o.transform = t }
}

// WithParams sets the generation parameters.
func WithParams(p Params) GenerateOption {
	return func(o *generateOptions) { o.params = p }
}

// WithNets sets net-name overrides for the instance's pins.
func WithNets(nets NetMap) GenerateOption {
	return func(o *generateOptions) { o.nets = nets }
}

// Generate creates an unplaced instance. Parameters are validated against the
// template's domain and net overrides against its declared pin set; either
// failure returns an INVALID_PARAMETER error.
func (t *Template) Generate(name string, opts ...GenerateOption) (*Instance, error) {
	if err := errors.ValidateName("instance", name); err != nil {
		return nil, err
	}
	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.transform < geom.R0 || o.transform > geom.R180 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "instance %s: unknown transform %v", name, o.transform)
	}

	nets := make(NetMap, len(o.nets))
	for _, id := range slices.Sorted(maps.Keys(o.nets)) {
		if !t.HasPin(id) {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "instance %s: template %s has no pin %q", name, t.name, id)
		}
		if err := errors.ValidateNetName(o.nets[id]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "instance %s: pin %s", name, id)
		}
		nets[id] = o.nets[id]
	}

	shape, resolved, err := t.Shape(o.params)
	if err != nil {
		return nil, err
	}

	return &Instance{
		name:      name,
		tmpl:      t,
		transform: o.transform,
		params:    resolved,
		shape:     shape,
		nets:      nets,
	}, nil
}

func cloneShape(s Shape) Shape {
	return Shape{Bounds: s.Bounds, Pins: maps.Clone(s.Pins)}
}
