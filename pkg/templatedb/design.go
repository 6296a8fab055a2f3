package templatedb

import (
	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
)

// FromDesign abstracts a finished design into a record. The boundary is the
// union of the placed instance footprints and the routing centerlines; pins
// are copied in design order. Every instance must be placed.
func FromDesign(d *database.Design) (Record, error) {
	for _, inst := range d.Instances() {
		if !inst.Placed() {
			return Record{}, errors.New(errors.ErrCodeUnplacedInstance, "design %s: instance %s is not placed", d.Name(), inst.Name())
		}
	}
	bounds, ok := d.Bounds()
	if !ok {
		return Record{}, errors.New(errors.ErrCodeSerialization, "design %s has no instances or routing to export", d.Name())
	}

	rec := Record{
		Cell:    d.Name(),
		Library: d.LibraryName(),
		Bounds:  BoxOf(bounds),
	}
	for _, p := range d.Pins() {
		rec.Pins = append(rec.Pins, PinRecord{
			Name:  p.Name,
			Layer: p.Layer,
			Grid:  p.Grid,
			MN:    BoxOf(p.MN),
			XY:    BoxOf(p.XY),
			Net:   p.Net,
		})
	}
	return rec.Seal(), nil
}
