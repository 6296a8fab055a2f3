package templatedb

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/template"
)

// Box is a rectangle encoded as [[x0, y0], [x1, y1]].
type Box [2][2]int

// BoxOf converts a rectangle.
func BoxOf(r geom.Rect) Box {
	return Box{{r.Min.X, r.Min.Y}, {r.Max.X, r.Max.Y}}
}

// Rect converts the box back to a normalized rectangle.
func (b Box) Rect() geom.Rect {
	return geom.R(b[0][0], b[0][1], b[1][0], b[1][1])
}

// PinRecord is an exported design pin.
type PinRecord struct {
	Name  string `yaml:"name" json:"name" bson:"name"`
	Layer string `yaml:"layer" json:"layer" bson:"layer"`
	Grid  string `yaml:"grid" json:"grid" bson:"grid"`
	MN    Box    `yaml:"mn" json:"mn" bson:"mn"`
	XY    Box    `yaml:"xy" json:"xy" bson:"xy"`
	Net   string `yaml:"net" json:"net" bson:"net"`
}

// Record is the abstract view of a finished design: its boundary and pins.
// Instances, routing, and internal nets are not part of a record.
type Record struct {
	Cell    string      `yaml:"-" json:"cell" bson:"_id"`
	Library string      `yaml:"library" json:"library" bson:"library"`
	Bounds  Box         `yaml:"bounds" json:"bounds" bson:"bounds"`
	Pins    []PinRecord `yaml:"pins" json:"pins" bson:"pins"`
	Digest  string      `yaml:"digest,omitempty" json:"digest,omitempty" bson:"digest,omitempty"`
}

// Pin returns the named pin.
func (r Record) Pin(name string) (PinRecord, bool) {
	for _, p := range r.Pins {
		if p.Name == name {
			return p, true
		}
	}
	return PinRecord{}, false
}

// ComputeDigest returns the SHA-256 of the record's canonical JSON encoding
// with the digest field cleared.
func (r Record) ComputeDigest() string {
	r.Digest = ""
	if len(r.Pins) == 0 {
		r.Pins = nil
	}
	data, _ := json.Marshal(r)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Seal returns a copy of r with its digest set.
func (r Record) Seal() Record {
	r.Digest = r.ComputeDigest()
	return r
}

// Verify checks the record's structure and, when a digest is present, that
// it matches the content. Records without a digest are accepted so that hand
// written entries can be imported.
func (r Record) Verify() error {
	if err := errors.ValidateName("cell", r.Cell); err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "record")
	}
	seen := make(map[string]bool, len(r.Pins))
	for _, p := range r.Pins {
		if seen[p.Name] {
			return errors.New(errors.ErrCodeSerialization, "record %s: duplicate pin %s", r.Cell, p.Name)
		}
		seen[p.Name] = true
	}
	if r.Digest != "" && !strings.EqualFold(r.Digest, r.ComputeDigest()) {
		return errors.New(errors.ErrCodeSerialization, "record %s: digest mismatch", r.Cell)
	}
	return nil
}

// Template returns a fixed template with the record's boundary and pins, so
// an exported design can be instantiated inside a larger one.
func (r Record) Template() (*template.Template, error) {
	shape := template.Shape{
		Bounds: r.Bounds.Rect(),
		Pins:   make(map[template.PinID]template.Pin, len(r.Pins)),
	}
	for _, p := range r.Pins {
		shape.Pins[template.PinID(p.Name)] = template.Pin{Rect: p.XY.Rect(), Layer: p.Layer, Net: p.Net}
	}
	tmpl, err := template.NewFixed(r.Cell, shape)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "record %s", r.Cell)
	}
	return tmpl, nil
}

func (r Record) String() string {
	return fmt.Sprintf("%s (%s, %d pins, bounds %v)", r.Cell, r.Library, len(r.Pins), r.Bounds.Rect())
}
