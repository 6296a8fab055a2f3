package tech

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/grid"
	"github.com/matzehuels/cellforge/pkg/template"
)

// File is the decoded form of a TOML technology file.
type File struct {
	Name      string         `toml:"name" validate:"required"`
	Layers    []LayerSpec    `toml:"layers" validate:"dive"`
	Grids     []GridSpec     `toml:"grids" validate:"required,min=1,dive"`
	Templates []TemplateSpec `toml:"templates" validate:"dive"`
}

// LayerSpec is a [[layers]] entry.
type LayerSpec struct {
	Name  string `toml:"name" validate:"required"`
	Color string `toml:"color" validate:"omitempty,hexcolor"`
}

// AxisSpec is one grid axis.
type AxisSpec struct {
	Elements []int `toml:"elements" validate:"required,min=1"`
	Range    int   `toml:"range" validate:"gt=0"`
}

// GridSpec is a [[grids]] entry. Routing grids set kind = "routing" and the
// layer fields.
type GridSpec struct {
	Name       string   `toml:"name" validate:"required"`
	Kind       string   `toml:"kind" validate:"omitempty,oneof=placement routing"`
	X          AxisSpec `toml:"x"`
	Y          AxisSpec `toml:"y"`
	Snap       string   `toml:"snap" validate:"omitempty,oneof=down nearest"`
	HLayer     string   `toml:"hlayer" validate:"required_if=Kind routing"`
	VLayer     string   `toml:"vlayer" validate:"required_if=Kind routing"`
	HWidth     int      `toml:"hwidth" validate:"gte=0"`
	VWidth     int      `toml:"vwidth" validate:"gte=0"`
	HExtension int      `toml:"hextension" validate:"gte=0"`
	VExtension int      `toml:"vextension" validate:"gte=0"`
	Via        string   `toml:"via" validate:"required_if=Kind routing"`
	Primary    string   `toml:"primary" validate:"omitempty,oneof=horizontal vertical"`
}

// PinSpec is a pin of a fixed template.
type PinSpec struct {
	Name  string    `toml:"name" validate:"required"`
	Layer string    `toml:"layer" validate:"required"`
	Rect  [2][2]int `toml:"rect"`
	Net   string    `toml:"net"`
}

// TemplateSpec is a [[templates]] entry.
type TemplateSpec struct {
	Name string `toml:"name" validate:"required"`
	Kind string `toml:"kind" validate:"required,oneof=mos fixed"`

	// mos
	Pitch      int    `toml:"pitch" validate:"required_if=Kind mos,gte=0"`
	Height     int    `toml:"height" validate:"required_if=Kind mos,gte=0"`
	GateY      int    `toml:"gate_y" validate:"gte=0"`
	SourceY    int    `toml:"source_y" validate:"gte=0"`
	DrainY     int    `toml:"drain_y" validate:"gte=0"`
	RailY      int    `toml:"rail_y" validate:"gte=0"`
	GateLayer  string `toml:"gate_layer" validate:"required_if=Kind mos"`
	SDLayer    string `toml:"sd_layer" validate:"required_if=Kind mos"`
	RailLayer  string `toml:"rail_layer" validate:"required_if=Kind mos"`
	MaxFingers int    `toml:"max_fingers" validate:"gte=0"`

	// fixed
	Bounds [2][2]int `toml:"bounds"`
	Pins   []PinSpec `toml:"pins" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseFile decodes and validates a technology file.
func ParseFile(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode technology file")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown keys in technology file: %s", strings.Join(keys, ", "))
	}
	if err := validate.Struct(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "technology file %s", f.Name)
	}
	return &f, nil
}

// FileProvider loads a technology from a TOML file. The file is read on
// first use and cached on the provider.
type FileProvider struct {
	Path string

	file *File
}

func (p *FileProvider) load() (*File, error) {
	if p.file != nil {
		return p.file, nil
	}
	if err := errors.ValidatePath(p.Path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read technology file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	p.file = f
	return f, nil
}

// Name returns the technology name from the file, or "" if it cannot be read.
func (p *FileProvider) Name() string {
	f, err := p.load()
	if err != nil {
		return ""
	}
	return f.Name
}

// Layers returns the layer table.
func (p *FileProvider) Layers() []Layer {
	f, err := p.load()
	if err != nil {
		return nil
	}
	out := make([]Layer, len(f.Layers))
	for i, l := range f.Layers {
		out[i] = Layer{Name: l.Name, Color: l.Color}
	}
	return out
}

// LoadTemplates builds every template in the file.
func (p *FileProvider) LoadTemplates() (map[string]*template.Template, error) {
	f, err := p.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(f.Templates))
	for _, spec := range f.Templates {
		if _, ok := out[spec.Name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate template %s", spec.Name)
		}
		tmpl, err := spec.build()
		if err != nil {
			return nil, err
		}
		out[spec.Name] = tmpl
	}
	return out, nil
}

func (s TemplateSpec) build() (*template.Template, error) {
	switch s.Kind {
	case "mos":
		return NewMOS(s.Name, MOSConfig{
			Pitch:      s.Pitch,
			Height:     s.Height,
			GateY:      s.GateY,
			SourceY:    s.SourceY,
			DrainY:     s.DrainY,
			RailY:      s.RailY,
			GateLayer:  s.GateLayer,
			SDLayer:    s.SDLayer,
			RailLayer:  s.RailLayer,
			MaxFingers: s.MaxFingers,
		})
	case "fixed":
		shape := template.Shape{
			Bounds: rectOf(s.Bounds),
			Pins:   make(map[template.PinID]template.Pin, len(s.Pins)),
		}
		for _, p := range s.Pins {
			shape.Pins[template.PinID(p.Name)] = template.Pin{Rect: rectOf(p.Rect), Layer: p.Layer, Net: p.Net}
		}
		return template.NewFixed(s.Name, shape)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "template %s: unknown kind %q", s.Name, s.Kind)
}

// LoadGrids builds every grid in the file. Templates are not consulted by
// file-based grids.
func (p *FileProvider) LoadGrids(map[string]*template.Template) (*grid.Set, error) {
	f, err := p.load()
	if err != nil {
		return nil, err
	}
	set := grid.NewSet()
	for _, spec := range f.Grids {
		if err := spec.addTo(set); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s GridSpec) addTo(set *grid.Set) error {
	snap, err := grid.ParseSnap(s.Snap)
	if err != nil {
		return err
	}
	g := grid.Grid{
		Name: s.Name,
		X:    grid.Axis{Elements: s.X.Elements, Range: s.X.Range},
		Y:    grid.Axis{Elements: s.Y.Elements, Range: s.Y.Range},
		Snap: snap,
	}
	if s.Kind != "routing" {
		return set.AddPlacement(&g)
	}

	primary := grid.Horizontal
	if s.Primary != "" {
		if primary, err = grid.ParseDirection(s.Primary); err != nil {
			return err
		}
	}
	return set.AddRouting(&grid.RoutingGrid{
		Grid:       g,
		HLayer:     s.HLayer,
		VLayer:     s.VLayer,
		HWidth:     s.HWidth,
		VWidth:     s.VWidth,
		HExtension: s.HExtension,
		VExtension: s.VExtension,
		Via:        s.Via,
		Primary:    primary,
	})
}

func rectOf(r [2][2]int) geom.Rect {
	return geom.R(r[0][0], r[0][1], r[1][0], r[1][1])
}
