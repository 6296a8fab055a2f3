package tech

import (
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/template"
)

// MOSConfig describes a multi-finger transistor template. Rows are y
// coordinates in template-local units; the rail row is usually the bottom
// edge and the template is mirrored for the opposite device type.
type MOSConfig struct {
	Pitch  int
	Height int

	GateY, SourceY, DrainY, RailY int

	GateLayer, SDLayer, RailLayer string

	// MaxFingers bounds nf. Zero means unbounded.
	MaxFingers int
}

// Pins of a MOS template.
const (
	PinGate   template.PinID = "G"
	PinSource template.PinID = "S"
	PinDrain  template.PinID = "D"
	PinRail   template.PinID = "RAIL"
)

// NewMOS returns a transistor template with parameters nf (finger count),
// tie ("", "S", or "D": which terminal is strapped to the rail), and
// trackswap (swap the source and drain rows).
//
// The width is nf*Pitch and the height does not depend on nf. The gate pin
// spans from half a pitch in from the left edge to half a pitch in from the
// right edge. Source terminals sit on even finger boundaries and drain
// terminals on odd ones; each pin spans its first to its last boundary. A
// tied terminal has no pin.
func NewMOS(name string, cfg MOSConfig) (*template.Template, error) {
	if cfg.Pitch <= 0 || cfg.Pitch%2 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "template %s: pitch must be positive and even, got %d", name, cfg.Pitch)
	}
	if cfg.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "template %s: height must be positive, got %d", name, cfg.Height)
	}
	for _, y := range []int{cfg.GateY, cfg.SourceY, cfg.DrainY, cfg.RailY} {
		if y < 0 || y > cfg.Height {
			return nil, errors.New(errors.ErrCodeInvalidInput, "template %s: row %d outside [0, %d]", name, y, cfg.Height)
		}
	}

	return template.New(name, template.Config{
		Params: []template.ParamSpec{
			{Name: "nf", Kind: template.KindInt, Default: 1, Min: 1, Max: cfg.MaxFingers},
			{Name: "tie", Kind: template.KindString, Default: "", Choices: []string{"", "S", "D"}},
			{Name: "trackswap", Kind: template.KindBool, Default: false},
		},
		Pins: []template.PinID{PinGate, PinSource, PinDrain, PinRail},
		Check: func(p template.Params) error {
			if p.String("tie") != "" && p.Int("nf")%2 != 0 {
				return errors.New(errors.ErrCodeInvalidParameter, "nf must be even when tie is set, got %d", p.Int("nf"))
			}
			return nil
		},
		Shape: func(p template.Params) (template.Shape, error) {
			return cfg.shape(p.Int("nf"), p.String("tie"), p.Bool("trackswap")), nil
		},
	})
}

func (c MOSConfig) shape(nf int, tie string, swap bool) template.Shape {
	w := nf * c.Pitch
	sy, dy := c.SourceY, c.DrainY
	if swap {
		sy, dy = dy, sy
	}

	pins := map[template.PinID]template.Pin{
		PinGate: {Rect: geom.R(c.Pitch/2, c.GateY, w-c.Pitch/2, c.GateY), Layer: c.GateLayer},
		PinRail: {Rect: geom.R(0, c.RailY, w, c.RailY), Layer: c.RailLayer},
	}
	// Boundaries k*Pitch for k in [0, nf]: even k are sources, odd k drains.
	lastEven := nf - nf%2
	lastOdd := nf - 1 + nf%2
	if tie != "S" {
		pins[PinSource] = template.Pin{Rect: geom.R(0, sy, lastEven*c.Pitch, sy), Layer: c.SDLayer}
	}
	if tie != "D" {
		pins[PinDrain] = template.Pin{Rect: geom.R(c.Pitch, dy, lastOdd*c.Pitch, dy), Layer: c.SDLayer}
	}
	return template.Shape{Bounds: geom.R(0, 0, w, c.Height), Pins: pins}
}
