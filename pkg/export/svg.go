package export

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"io"
	"slices"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/templatedb"
)

// fallbackColors are cycled through for layers the technology has no color for.
var fallbackColors = []string{"#4a90d9", "#d9534f", "#5cb85c", "#f0ad4e", "#9b59b6", "#1abc9c"}

const (
	outlineColor = "#555555"
	viaColor     = "#222222"
	pinColor     = "#000000"
)

// SVGOption configures an [SVGExporter].
type SVGOption func(*SVGExporter)

// WithMargin sets the blank border around the drawing, in database units.
func WithMargin(m int) SVGOption { return func(e *SVGExporter) { e.margin = m } }

// WithViaSize sets the edge length of drawn vias.
func WithViaSize(s int) SVGOption { return func(e *SVGExporter) { e.viaSize = s } }

// WithoutLabels omits instance and pin labels.
func WithoutLabels() SVGOption { return func(e *SVGExporter) { e.labels = false } }

// WithLayerColor overrides the color of one layer.
func WithLayerColor(layer, color string) SVGOption {
	return func(e *SVGExporter) { e.colors[layer] = color }
}

// SVGExporter draws a mask preview: instance outlines, wires at their drawn
// width and extension, vias, and pin labels. Layer colors come from the
// design's technology unless overridden.
type SVGExporter struct {
	margin  int
	viaSize int
	labels  bool
	colors  map[string]string
}

// NewSVG returns an SVG exporter.
func NewSVG(opts ...SVGOption) *SVGExporter {
	e := &SVGExporter{margin: 50, viaSize: 40, labels: true, colors: make(map[string]string)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *SVGExporter) Format() string { return "svg" }

// frame maps layout coordinates, y up, to SVG coordinates, y down.
type frame struct {
	bounds geom.Rect
	margin int
}

func (f frame) x(x int) int { return x - f.bounds.Min.X + f.margin }
func (f frame) y(y int) int { return f.bounds.Max.Y - y + f.margin }

func (f frame) rect(buf *bytes.Buffer, r geom.Rect, attrs string) {
	fmt.Fprintf(buf, `    <rect x="%d" y="%d" width="%d" height="%d" %s/>`+"\n",
		f.x(r.Min.X), f.y(r.Max.Y), r.Width(), r.Height(), attrs)
}

func (e *SVGExporter) Export(d *database.Design, w io.Writer) error {
	elems := d.Elements()
	bounds, ok := e.extent(d, elems)
	if !ok {
		bounds = geom.R(0, 0, 0, 0)
	}
	f := frame{bounds: bounds, margin: e.margin}
	width := bounds.Width() + 2*e.margin
	height := bounds.Height() + 2*e.margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(d.Name()))
	buf.WriteString(`  <rect width="100%" height="100%" fill="#ffffff"/>` + "\n")

	buf.WriteString(`  <g class="instances">` + "\n")
	for _, inst := range d.Instances() {
		r, err := inst.Bounds()
		if err != nil {
			return err
		}
		f.rect(&buf, r, fmt.Sprintf(`id="inst-%s" fill="none" stroke="%s" stroke-width="4" stroke-dasharray="16 8"`, html.EscapeString(inst.Name()), outlineColor))
		if e.labels {
			fmt.Fprintf(&buf, `    <text x="%d" y="%d" font-family="monospace" font-size="40" fill="%s">%s</text>`+"\n",
				f.x(r.Min.X)+10, f.y(r.Max.Y)+45, outlineColor, html.EscapeString(inst.Name()+" ("+inst.Template().Name()+")"))
		}
	}
	buf.WriteString("  </g>\n")

	wires := make([]*database.Element, 0, len(elems))
	var vias []*database.Element
	for _, el := range elems {
		if el.Kind == database.KindVia {
			vias = append(vias, el)
		} else {
			wires = append(wires, el)
		}
	}
	slices.SortStableFunc(wires, func(a, b *database.Element) int { return cmp.Compare(a.Layer, b.Layer) })

	buf.WriteString(`  <g class="wires">` + "\n")
	for _, el := range wires {
		f.rect(&buf, el.Drawn(), fmt.Sprintf(`class="layer-%s" fill="%s" fill-opacity="0.6"`, el.Layer, e.color(d, el.Layer)))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="vias">` + "\n")
	half := e.viaSize / 2
	for _, el := range vias {
		p := el.XY.Min
		f.rect(&buf, geom.R(p.X-half, p.Y-half, p.X+half, p.Y+half), fmt.Sprintf(`class="via-%s" fill="none" stroke="%s" stroke-width="4"`, el.Via, viaColor))
	}
	buf.WriteString("  </g>\n")

	if e.labels {
		buf.WriteString(`  <g class="pins">` + "\n")
		for _, p := range d.Pins() {
			c := p.XY.Center2()
			fmt.Fprintf(&buf, `    <text x="%d" y="%d" font-family="monospace" font-size="48" font-weight="bold" text-anchor="middle" fill="%s">%s</text>`+"\n",
				f.x(c.X/2), f.y(c.Y/2), pinColor, html.EscapeString(p.Name))
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// ExportRecord draws an exported template: its boundary and its pins.
func (e *SVGExporter) ExportRecord(rec templatedb.Record, w io.Writer) error {
	bounds := rec.Bounds.Rect()
	for _, p := range rec.Pins {
		bounds = bounds.Union(p.XY.Rect())
	}
	f := frame{bounds: bounds, margin: e.margin}
	width := bounds.Width() + 2*e.margin
	height := bounds.Height() + 2*e.margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(rec.Cell))
	buf.WriteString(`  <rect width="100%" height="100%" fill="#ffffff"/>` + "\n")
	f.rect(&buf, rec.Bounds.Rect(), fmt.Sprintf(`id="boundary" fill="none" stroke="%s" stroke-width="4"`, outlineColor))

	buf.WriteString(`  <g class="pins">` + "\n")
	half := e.viaSize / 2
	for _, p := range rec.Pins {
		r := p.XY.Rect()
		drawn := geom.R(r.Min.X-half, r.Min.Y-half, r.Max.X+half, r.Max.Y+half)
		f.rect(&buf, drawn, fmt.Sprintf(`id="pin-%s" class="layer-%s" fill="%s" fill-opacity="0.6"`,
			html.EscapeString(p.Name), p.Layer, e.recordColor(p.Layer)))
		if e.labels {
			c := r.Center2()
			fmt.Fprintf(&buf, `    <text x="%d" y="%d" font-family="monospace" font-size="48" font-weight="bold" text-anchor="middle" fill="%s">%s</text>`+"\n",
				f.x(c.X/2), f.y(c.Y/2), pinColor, html.EscapeString(p.Name))
		}
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func (e *SVGExporter) recordColor(layer string) string {
	if c, ok := e.colors[layer]; ok {
		return c
	}
	return fallbackColor(layer)
}

// extent is the union of instance footprints and drawn routing.
func (e *SVGExporter) extent(d *database.Design, elems []*database.Element) (geom.Rect, bool) {
	var rects []geom.Rect
	for _, inst := range d.Instances() {
		if r, err := inst.Bounds(); err == nil {
			rects = append(rects, r)
		}
	}
	for _, el := range elems {
		rects = append(rects, el.Drawn())
	}
	return geom.Bounds(rects...)
}

func (e *SVGExporter) color(d *database.Design, layer string) string {
	if c, ok := e.colors[layer]; ok {
		return c
	}
	if t := d.Tech(); t != nil {
		if l, ok := t.Layer(layer); ok && l.Color != "" {
			return l.Color
		}
	}
	return fallbackColor(layer)
}

func fallbackColor(layer string) string {
	var h uint
	for _, r := range layer {
		h = h*31 + uint(r)
	}
	return fallbackColors[h%uint(len(fallbackColors))]
}
