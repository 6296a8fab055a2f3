package export

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/geom"
)

// JSONOption configures a [JSONExporter].
type JSONOption func(*JSONExporter)

// WithRunID records id as the export run instead of a random one, so
// several designs exported together share it.
func WithRunID(id string) JSONOption { return func(e *JSONExporter) { e.runID = id } }

// WithIndent pretty-prints the output.
func WithIndent() JSONOption { return func(e *JSONExporter) { e.indent = true } }

// JSONExporter dumps a design's flattened geometry.
type JSONExporter struct {
	runID  string
	indent bool
}

// NewJSON returns a JSON exporter. Unless [WithRunID] is given, a new run ID
// is generated for the exporter.
func NewJSON(opts ...JSONOption) *JSONExporter {
	e := &JSONExporter{}
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	return e
}

func (e *JSONExporter) Format() string { return "json" }

// RunID returns the run ID written into every export.
func (e *JSONExporter) RunID() string { return e.runID }

type box [2][2]int

func boxOf(r geom.Rect) box { return box{{r.Min.X, r.Min.Y}, {r.Max.X, r.Max.Y}} }

type jsonDesign struct {
	RunID     string         `json:"run_id"`
	Design    string         `json:"design"`
	Library   string         `json:"library,omitempty"`
	Tech      string         `json:"tech,omitempty"`
	Bounds    *box           `json:"bounds,omitempty"`
	Instances []jsonInstance `json:"instances"`
	Elements  []jsonElement  `json:"elements"`
	Pins      []jsonPin      `json:"pins"`
}

type jsonInstance struct {
	Name      string         `json:"name"`
	Template  string         `json:"template"`
	Transform string         `json:"transform"`
	Params    map[string]any `json:"params,omitempty"`
	Bounds    box            `json:"bounds"`
}

type jsonElement struct {
	ID        int       `json:"id"`
	Kind      string    `json:"kind"`
	Grid      string    `json:"grid"`
	Layer     string    `json:"layer,omitempty"`
	Layers    [2]string `json:"layers,omitzero"`
	Via       string    `json:"via,omitempty"`
	MN        box       `json:"mn"`
	XY        box       `json:"xy"`
	Drawn     box       `json:"drawn"`
	Width     int       `json:"width,omitempty"`
	Extension int       `json:"extension,omitempty"`
	Net       string    `json:"net,omitempty"`
}

type jsonPin struct {
	Name  string `json:"name"`
	Grid  string `json:"grid"`
	Layer string `json:"layer"`
	MN    box    `json:"mn"`
	XY    box    `json:"xy"`
	Net   string `json:"net"`
}

func (e *JSONExporter) Export(d *database.Design, w io.Writer) error {
	out := jsonDesign{
		RunID:     e.runID,
		Design:    d.Name(),
		Library:   d.LibraryName(),
		Instances: []jsonInstance{},
		Elements:  []jsonElement{},
		Pins:      []jsonPin{},
	}
	if t := d.Tech(); t != nil {
		out.Tech = t.Name()
	}
	if b, ok := d.Bounds(); ok {
		bb := boxOf(b)
		out.Bounds = &bb
	}
	for _, inst := range d.Instances() {
		r, err := inst.Bounds()
		if err != nil {
			return err
		}
		out.Instances = append(out.Instances, jsonInstance{
			Name:      inst.Name(),
			Template:  inst.Template().Name(),
			Transform: inst.Transform().String(),
			Params:    inst.Params(),
			Bounds:    boxOf(r),
		})
	}
	for _, el := range d.Elements() {
		out.Elements = append(out.Elements, jsonElement{
			ID:        el.ID,
			Kind:      el.Kind.String(),
			Grid:      el.Grid,
			Layer:     el.Layer,
			Layers:    el.Layers,
			Via:       el.Via,
			MN:        boxOf(el.MN),
			XY:        boxOf(el.XY),
			Drawn:     boxOf(el.Drawn()),
			Width:     el.Width,
			Extension: el.Extension,
			Net:       el.Net,
		})
	}
	for _, p := range d.Pins() {
		out.Pins = append(out.Pins, jsonPin{
			Name:  p.Name,
			Grid:  p.Grid,
			Layer: p.Layer,
			MN:    boxOf(p.MN),
			XY:    boxOf(p.XY),
			Net:   p.Net,
		})
	}

	enc := json.NewEncoder(w)
	if e.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
