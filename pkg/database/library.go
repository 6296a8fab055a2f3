// Package database holds the layout database: libraries of designs, and the
// placement, routing, and pin-extraction operations that build a design.
//
// All geometry operations take the grid to work on explicitly. Routing
// endpoints and pin regions are grid indices, so anything constructed here
// lies on the manufacturing grid by construction:
//
//	d, _ := database.NewDesign("nand_2x", tk)
//	_ = d.Place(pg, mn0, geom.Pt(0, 0))
//	wires, _ := d.Route(r23, []geom.Point{a, b}, database.WithVias(true, true), database.WithNet("A"))
//	bbox, _ := r23.BBox(wires[1])
//	_, _ = d.Pin("A", r23, bbox, "")
//
// A failed operation returns a structured error from pkg/errors and leaves
// the design exactly as it was.
package database

import (
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/tech"
)

// Library is an ordered collection of designs built with one technology.
type Library struct {
	name    string
	tech    *tech.Tech
	designs []*Design
}

// NewLibrary creates an empty library.
func NewLibrary(name string, t *tech.Tech) (*Library, error) {
	if err := errors.ValidateName("library", name); err != nil {
		return nil, err
	}
	return &Library{name: name, tech: t}, nil
}

// Name returns the library name.
func (l *Library) Name() string { return l.name }

// Tech returns the library's technology handle.
func (l *Library) Tech() *tech.Tech { return l.tech }

// Designs returns the designs in insertion order.
func (l *Library) Designs() []*Design { return slices.Clone(l.designs) }

// Design looks up a design by name.
func (l *Library) Design(name string) (*Design, bool) {
	for _, d := range l.designs {
		if d.name == name {
			return d, true
		}
	}
	return nil, false
}

// Append adds d to the library. A design belongs to at most one library, and
// names are unique within a library.
func (l *Library) Append(d *Design) error {
	if d.lib != nil {
		return errors.New(errors.ErrCodeInvalidInput, "design %s already belongs to library %s", d.name, d.lib.name)
	}
	if _, ok := l.Design(d.name); ok {
		return errors.New(errors.ErrCodeInvalidInput, "library %s already has a design named %s", l.name, d.name)
	}
	d.lib = l
	d.libName = l.name
	if d.tech == nil {
		d.tech = l.tech
	}
	l.designs = append(l.designs, d)
	return nil
}

// Remove detaches the named design and reports whether it was present.
func (l *Library) Remove(name string) bool {
	for i, d := range l.designs {
		if d.name == name {
			d.lib = nil
			d.libName = ""
			l.designs = slices.Delete(l.designs, i, i+1)
			return true
		}
	}
	return false
}
