package template

import (
	"maps"
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
)

// Instance is a generated occurrence of a template.
//
// Mirroring happens around the center of the template boundary, so the
// instance footprint has the same extent as the template boundary for every
// transform. A placed instance's footprint is that boundary translated so
// its lower-left corner sits at the origin.
type Instance struct {
	name      string
	tmpl      *Template
	transform geom.Transform
	params    Params
	shape     Shape
	nets      NetMap

	origin *geom.Point
}

// Name returns the instance name.
func (i *Instance) Name() string { return i.name }

// Template returns the shared template the instance was generated from.
func (i *Instance) Template() *Template { return i.tmpl }

// Transform returns the instance orientation.
func (i *Instance) Transform() geom.Transform { return i.transform }

// Params returns a copy of the resolved parameters.
func (i *Instance) Params() Params { return maps.Clone(i.params) }

// Size returns the width and height of the footprint.
func (i *Instance) Size() geom.Point {
	return geom.Pt(i.shape.Bounds.Width(), i.shape.Bounds.Height())
}

// Placed reports whether the instance has an origin.
func (i *Instance) Placed() bool { return i.origin != nil }

// Origin returns the physical lower-left corner of the placed footprint.
func (i *Instance) Origin() (geom.Point, bool) {
	if i.origin == nil {
		return geom.Point{}, false
	}
	return *i.origin, true
}

// SetOrigin moves the instance. Design.Place is the usual caller; it also
// registers the instance with the design.
func (i *Instance) SetOrigin(xy geom.Point) {
	i.origin = &xy
}

// Bounds returns the physical footprint of the placed instance.
func (i *Instance) Bounds() (geom.Rect, error) {
	if i.origin == nil {
		return geom.Rect{}, errors.New(errors.ErrCodeUnplacedInstance, "instance %s is not placed", i.name)
	}
	return i.shape.Bounds.Translate(i.offset()), nil
}

func (i *Instance) offset() geom.Point {
	return i.origin.Sub(i.shape.Bounds.Min)
}

// Net returns the net attached to a pin: the override if one was given,
// otherwise the template's net for the pin, otherwise the pin name.
func (i *Instance) Net(id PinID) string {
	if n, ok := i.nets[id]; ok {
		return n
	}
	if p, ok := i.shape.Pins[id]; ok && p.Net != "" {
		return p.Net
	}
	return string(id)
}

// SetNet overrides the net of a declared pin.
func (i *Instance) SetNet(id PinID, net string) error {
	if !i.tmpl.HasPin(id) {
		return errors.New(errors.ErrCodeInvalidParameter, "instance %s: template %s has no pin %q", i.name, i.tmpl.name, id)
	}
	if err := errors.ValidateNetName(net); err != nil {
		return err
	}
	i.nets[id] = net
	return nil
}

// PinIDs returns the pins present in the generated shape, sorted. This can be
// a subset of the template's declared pins.
func (i *Instance) PinIDs() []PinID {
	return slices.Sorted(maps.Keys(i.shape.Pins))
}

// LocalPin returns a pin transformed into instance orientation but relative
// to the template boundary rather than the placement origin.
func (i *Instance) LocalPin(id PinID) (Pin, bool) {
	p, ok := i.shape.Pins[id]
	if !ok {
		return Pin{}, false
	}
	p.Rect = i.transform.ApplyRect(p.Rect, i.shape.Bounds)
	p.Net = i.Net(id)
	return p, true
}

// Pin returns a pin of the placed instance in physical design coordinates.
func (i *Instance) Pin(id PinID) (Pin, error) {
	if i.origin == nil {
		return Pin{}, errors.New(errors.ErrCodeUnplacedInstance, "instance %s is not placed", i.name)
	}
	p, ok := i.LocalPin(id)
	if !ok {
		return Pin{}, errors.New(errors.ErrCodeNotFound, "instance %s has no pin %q", i.name, id)
	}
	p.Rect = p.Rect.Translate(i.offset())
	return p, nil
}

// Pins returns all pins of the placed instance in physical design coordinates.
func (i *Instance) Pins() (map[PinID]Pin, error) {
	out := make(map[PinID]Pin, len(i.shape.Pins))
	for id := range i.shape.Pins {
		p, err := i.Pin(id)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}
