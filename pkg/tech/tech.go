// Package tech provides the technology handle that designs are built with.
//
// A technology is a set of templates and grids produced by a [Provider].
// [Load] asks the provider for both once and freezes the result into an
// immutable [Tech]. The handle is passed explicitly to the libraries and
// designs that use it; there is no process-wide registry.
//
// [FileProvider] reads a TOML technology file:
//
//	p := &tech.FileProvider{Path: "demo.toml"}
//	t, err := tech.Load(p)
//	nmos, err := t.Template("nmos")
//	r23, err := t.RoutingGrid("routing_23_cmos")
package tech

import (
	"maps"
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/grid"
	"github.com/matzehuels/cellforge/pkg/template"
)

// Provider constructs the templates and grids of a technology.
type Provider interface {
	LoadTemplates() (map[string]*template.Template, error)
	LoadGrids(templates map[string]*template.Template) (*grid.Set, error)
}

// Layer describes how a layer is drawn in previews.
type Layer struct {
	Name  string
	Color string
}

// Tech is an immutable technology handle.
type Tech struct {
	name      string
	templates map[string]*template.Template
	grids     *grid.Set
	layers    map[string]Layer
}

// Load builds a technology from p. If p also implements Name() string or
// Layers() []Layer, those are recorded too.
func Load(p Provider) (*Tech, error) {
	templates, err := p.LoadTemplates()
	if err != nil {
		return nil, err
	}
	grids, err := p.LoadGrids(templates)
	if err != nil {
		return nil, err
	}
	if grids == nil {
		grids = grid.NewSet()
	}

	t := &Tech{
		name:      "unnamed",
		templates: maps.Clone(templates),
		grids:     grids,
		layers:    make(map[string]Layer),
	}
	if n, ok := p.(interface{ Name() string }); ok && n.Name() != "" {
		t.name = n.Name()
	}
	if l, ok := p.(interface{ Layers() []Layer }); ok {
		for _, layer := range l.Layers() {
			t.layers[layer.Name] = layer
		}
	}
	if t.templates == nil {
		t.templates = make(map[string]*template.Template)
	}
	return t, nil
}

// Name returns the technology name.
func (t *Tech) Name() string { return t.name }

// Template looks up a template by name.
func (t *Tech) Template(name string) (*template.Template, error) {
	if tmpl, ok := t.templates[name]; ok {
		return tmpl, nil
	}
	return nil, errors.New(errors.ErrCodeMissingTemplate, "technology %s has no template %q", t.name, name)
}

// Grid looks up a placement grid by name.
func (t *Tech) Grid(name string) (*grid.Grid, error) {
	return t.grids.Placement(name)
}

// RoutingGrid looks up a routing grid by name.
func (t *Tech) RoutingGrid(name string) (*grid.RoutingGrid, error) {
	return t.grids.Routing(name)
}

// Grids returns the technology's grid set.
func (t *Tech) Grids() *grid.Set { return t.grids }

// TemplateNames returns the template names, sorted.
func (t *Tech) TemplateNames() []string {
	return slices.Sorted(maps.Keys(t.templates))
}

// Layer returns the drawing attributes of a layer.
func (t *Tech) Layer(name string) (Layer, bool) {
	l, ok := t.layers[name]
	return l, ok
}
