// Package place records anchored placement as an explicit plan.
//
// Cell generators usually place the first instance at a fixed grid index and
// every other instance relative to an anchor of one already placed:
//
//	p := place.New()
//	p.At(mn0, geom.Pt(0, 0))
//	p.Relative(mp0, mn0, grid.TopLeft)
//	p.Relative(mn1, mn0, grid.BottomRight)
//	p.Relative(mp1, mp0, grid.BottomRight)
//	err := p.Apply(design, pg)
//
// The plan is a DAG whose edges run from a reference instance to the
// instances placed relative to it. [Plan.Apply] evaluates the steps in
// topological order, reading anchors from positions it has just applied.
//
// Moving an instance never moves its dependents automatically.
// [Plan.Dependents] lists the steps that depend on an instance, and
// [Plan.Reapply] re-evaluates an instance and everything downstream of it.
package place

import (
	stderrors "errors"

	"github.com/matzehuels/cellforge/pkg/dag"
	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/grid"
	"github.com/matzehuels/cellforge/pkg/template"
)

// Vector selects an anchor vector of an instance.
type Vector int

const (
	HeightVec Vector = iota
	WidthVec
)

func (v Vector) String() string {
	if v == WidthVec {
		return "width_vec"
	}
	return "height_vec"
}

// Offset is added to a relative step's anchor: either a fixed grid shift or
// a multiple of another instance's height or width vector.
type Offset struct {
	Of     *template.Instance
	Vector Vector
	Times  int
	Shift  geom.Point
}

// Height returns an offset of one height vector of inst.
func Height(inst *template.Instance) Offset {
	return Offset{Of: inst, Vector: HeightVec, Times: 1}
}

// Width returns an offset of one width vector of inst.
func Width(inst *template.Instance) Offset {
	return Offset{Of: inst, Vector: WidthVec, Times: 1}
}

// Shift returns a fixed grid offset.
func Shift(d geom.Point) Offset {
	return Offset{Shift: d}
}

// Step places one instance.
type Step struct {
	Inst *template.Instance

	// At is the grid index for absolute steps. Nil for relative steps.
	At *geom.Point

	Ref     *template.Instance
	Anchor  grid.Anchor
	Offsets []Offset
}

// Name returns the name of the placed instance.
func (s *Step) Name() string { return s.Inst.Name() }

// refs returns the names of the instances the step reads.
func (s *Step) refs() []string {
	var out []string
	if s.Ref != nil {
		out = append(out, s.Ref.Name())
	}
	for _, o := range s.Offsets {
		if o.Of != nil {
			out = append(out, o.Of.Name())
		}
	}
	return out
}

// Plan is an ordered set of placement steps, at most one per instance.
type Plan struct {
	steps map[string]*Step
	order []string
}

// New returns an empty plan.
func New() *Plan {
	return &Plan{steps: make(map[string]*Step)}
}

func (p *Plan) add(s *Step) error {
	if s.Inst == nil {
		return errors.New(errors.ErrCodeInvalidInput, "placement step without an instance")
	}
	if _, ok := p.steps[s.Name()]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "instance %s already has a placement step", s.Name())
	}
	p.steps[s.Name()] = s
	p.order = append(p.order, s.Name())
	return nil
}

// At adds a step placing inst at grid index mn.
func (p *Plan) At(inst *template.Instance, mn geom.Point) error {
	return p.add(&Step{Inst: inst, At: &mn})
}

// Relative adds a step placing inst at an anchor of ref plus offsets.
func (p *Plan) Relative(inst, ref *template.Instance, anchor grid.Anchor, offsets ...Offset) error {
	if ref == nil {
		return errors.New(errors.ErrCodeInvalidInput, "relative step for %s without a reference", inst.Name())
	}
	return p.add(&Step{Inst: inst, Ref: ref, Anchor: anchor, Offsets: offsets})
}

// Steps returns the steps in insertion order.
func (p *Plan) Steps() []*Step {
	out := make([]*Step, len(p.order))
	for i, name := range p.order {
		out[i] = p.steps[name]
	}
	return out
}

// Graph builds the dependency DAG of the plan. Every reference must name an
// instance that has its own step.
func (p *Plan) Graph() (*dag.DAG, error) {
	g := dag.New()
	for _, name := range p.order {
		s := p.steps[name]
		meta := dag.Metadata{}
		if s.At != nil {
			meta["at"] = *s.At
		} else {
			meta["anchor"] = s.Anchor.String() + "(" + s.Ref.Name() + ")"
		}
		if err := g.AddNode(dag.Node{ID: name, Meta: meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "plan node %s", name)
		}
	}
	for _, name := range p.order {
		for _, ref := range p.steps[name].refs() {
			if _, ok := p.steps[ref]; !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "step %s refers to %s, which has no placement step", name, ref)
			}
			if err := g.AddEdge(dag.Edge{From: ref, To: name}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "plan edge %s -> %s", ref, name)
			}
		}
	}
	return g, nil
}

// Validate checks that every reference is known and that no instance
// depends on itself.
func (p *Plan) Validate() error {
	g, err := p.Graph()
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return cyclic(err)
	}
	return nil
}

func cyclic(err error) error {
	if stderrors.Is(err, dag.ErrGraphHasCycle) {
		return errors.Wrap(errors.ErrCodeCyclicPlan, err, "placement plan")
	}
	return err
}

// Apply validates the plan and places every step into d on grid g in
// topological order. Ties keep insertion order.
func (p *Plan) Apply(d *database.Design, g *grid.Grid) error {
	gr, err := p.Graph()
	if err != nil {
		return err
	}
	order, err := gr.TopoSort()
	if err != nil {
		return cyclic(err)
	}
	return p.run(d, g, order)
}

// Dependents returns, in evaluation order, every step that reads the
// position of the named instance directly or transitively.
func (p *Plan) Dependents(name string) ([]string, error) {
	if _, ok := p.steps[name]; !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no placement step for %s", name)
	}
	gr, err := p.Graph()
	if err != nil {
		return nil, err
	}
	if err := gr.Validate(); err != nil {
		return nil, cyclic(err)
	}
	return gr.Descendants(name), nil
}

// Reapply re-evaluates the named step and all of its dependents. Use it after
// changing the step's instance, for example its absolute index.
func (p *Plan) Reapply(d *database.Design, g *grid.Grid, name string) error {
	deps, err := p.Dependents(name)
	if err != nil {
		return err
	}
	return p.run(d, g, append([]string{name}, deps...))
}

// Move changes the grid index of an absolute step. Dependents keep their
// positions until Reapply is called.
func (p *Plan) Move(name string, mn geom.Point) error {
	s, ok := p.steps[name]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no placement step for %s", name)
	}
	if s.At == nil {
		return errors.New(errors.ErrCodeInvalidInput, "step %s is relative to %s", name, s.Ref.Name())
	}
	s.At = &mn
	return nil
}

func (p *Plan) run(d *database.Design, g *grid.Grid, order []string) error {
	// Name clashes are the one way Place can fail; catch them before any
	// instance moves.
	for _, name := range order {
		if other, ok := d.Instance(name); ok && other != p.steps[name].Inst {
			return errors.New(errors.ErrCodeInvalidInput, "design %s already has a different instance named %s", d.Name(), name)
		}
	}
	for _, name := range order {
		s := p.steps[name]
		mn, err := s.resolve(g)
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "place %s", name)
		}
		if err := d.Place(g, s.Inst, mn); err != nil {
			return err
		}
	}
	return nil
}

func (s *Step) resolve(g *grid.Grid) (geom.Point, error) {
	if s.At != nil {
		return *s.At, nil
	}
	mn, err := g.Corner(s.Ref, s.Anchor)
	if err != nil {
		return geom.Point{}, err
	}
	for _, o := range s.Offsets {
		mn = mn.Add(o.Shift)
		if o.Of == nil {
			continue
		}
		var v geom.Point
		if o.Vector == WidthVec {
			v, err = g.WidthVec(o.Of)
		} else {
			v, err = g.HeightVec(o.Of)
		}
		if err != nil {
			return geom.Point{}, err
		}
		mn = mn.Add(geom.Pt(v.X*o.Times, v.Y*o.Times))
	}
	return mn, nil
}
