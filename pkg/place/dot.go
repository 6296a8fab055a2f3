package place

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cellforge/pkg/geom"
)

// ToDOT renders the plan's dependency graph in Graphviz DOT format. Absolute
// steps are drawn with a bold outline.
func (p *Plan) ToDOT() (string, error) {
	g, err := p.Graph()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		s := p.steps[n.ID]
		attrs := []string{fmt.Sprintf("label=%q", stepLabel(s))}
		if s.At != nil {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

func stepLabel(s *Step) string {
	var b strings.Builder
	b.WriteString(s.Name())
	b.WriteString("\n")
	b.WriteString(s.Inst.Template().Name())
	b.WriteString("\n")
	if s.At != nil {
		fmt.Fprintf(&b, "at %v", *s.At)
		return b.String()
	}
	fmt.Fprintf(&b, "%s(%s)", s.Anchor, s.Ref.Name())
	for _, o := range s.Offsets {
		switch {
		case o.Of != nil && o.Times != 1:
			fmt.Fprintf(&b, " + %d*%s(%s)", o.Times, o.Vector, o.Of.Name())
		case o.Of != nil:
			fmt.Fprintf(&b, " + %s(%s)", o.Vector, o.Of.Name())
		}
		if o.Shift != (geom.Point{}) {
			fmt.Fprintf(&b, " + %v", o.Shift)
		}
	}
	return b.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
