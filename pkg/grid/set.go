package grid

import (
	"maps"
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
)

// Set is a named collection of placement and routing grids. Grid names are
// unique across both kinds.
type Set struct {
	placement map[string]*Grid
	routing   map[string]*RoutingGrid
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{
		placement: make(map[string]*Grid),
		routing:   make(map[string]*RoutingGrid),
	}
}

func (s *Set) taken(name string) bool {
	_, p := s.placement[name]
	_, r := s.routing[name]
	return p || r
}

// AddPlacement validates and adds a placement grid.
func (s *Set) AddPlacement(g *Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if s.taken(g.Name) {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate grid %s", g.Name)
	}
	s.placement[g.Name] = g
	return nil
}

// AddRouting validates and adds a routing grid.
func (s *Set) AddRouting(g *RoutingGrid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if s.taken(g.Name) {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate grid %s", g.Name)
	}
	s.routing[g.Name] = g
	return nil
}

// Placement looks up a placement grid.
func (s *Set) Placement(name string) (*Grid, error) {
	if g, ok := s.placement[name]; ok {
		return g, nil
	}
	return nil, errors.New(errors.ErrCodeMissingTemplate, "no placement grid %q", name)
}

// Routing looks up a routing grid.
func (s *Set) Routing(name string) (*RoutingGrid, error) {
	if g, ok := s.routing[name]; ok {
		return g, nil
	}
	return nil, errors.New(errors.ErrCodeMissingTemplate, "no routing grid %q", name)
}

// Lookup returns the grid named name of either kind. Routing grids are
// returned through their embedded Grid.
func (s *Set) Lookup(name string) (*Grid, error) {
	if g, ok := s.placement[name]; ok {
		return g, nil
	}
	if g, ok := s.routing[name]; ok {
		return &g.Grid, nil
	}
	return nil, errors.New(errors.ErrCodeMissingTemplate, "no grid %q", name)
}

// PlacementNames returns the placement grid names, sorted.
func (s *Set) PlacementNames() []string { return slices.Sorted(maps.Keys(s.placement)) }

// RoutingNames returns the routing grid names, sorted.
func (s *Set) RoutingNames() []string { return slices.Sorted(maps.Keys(s.routing)) }
