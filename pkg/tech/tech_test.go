package tech

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/grid"
	"github.com/matzehuels/cellforge/pkg/template"
)

func demo(t *testing.T) *Tech {
	t.Helper()
	tk, err := Demo()
	if err != nil {
		t.Fatalf("Demo() error: %v", err)
	}
	return tk
}

func TestDemoLookups(t *testing.T) {
	tk := demo(t)

	if tk.Name() != DemoName {
		t.Errorf("Name() = %q, want %q", tk.Name(), DemoName)
	}
	if diff := cmp.Diff([]string{"nmos", "pmos", "tap"}, tk.TemplateNames()); diff != "" {
		t.Errorf("TemplateNames() mismatch (-want +got):\n%s", diff)
	}

	pg, err := tk.Grid("placement_basic")
	if err != nil {
		t.Fatal(err)
	}
	if pg.X.Range != 100 || pg.Y.Range != 1000 {
		t.Errorf("placement grid ranges = %d/%d", pg.X.Range, pg.Y.Range)
	}

	r23, err := tk.RoutingGrid("routing_23_cmos")
	if err != nil {
		t.Fatal(err)
	}
	if r23.HLayer != "M2" || r23.VLayer != "M3" || r23.Via != "via_M2_M3" || r23.Primary != grid.Vertical {
		t.Errorf("routing_23_cmos = %+v", r23)
	}

	if l, ok := tk.Layer("M3"); !ok || l.Color != "#5cb85c" {
		t.Errorf("Layer(M3) = %+v, %v", l, ok)
	}

	misses := []func() error{
		func() error { _, err := tk.Template("inverter"); return err },
		func() error { _, err := tk.Grid("routing_23_cmos"); return err },
		func() error { _, err := tk.RoutingGrid("placement_basic"); return err },
	}
	for i, miss := range misses {
		if err := miss(); !errors.Is(err, errors.ErrCodeMissingTemplate) {
			t.Errorf("lookup %d error = %v, want MISSING_TEMPLATE_OR_GRID", i, err)
		}
	}
}

// Generating the same transistor with two and four fingers yields two valid
// instances whose gate pins differ in length by exactly two pitches.
func TestMOSFingerScaling(t *testing.T) {
	nmos, err := demo(t).Template("nmos")
	if err != nil {
		t.Fatal(err)
	}

	gen := func(nf int) *template.Instance {
		t.Helper()
		inst, err := nmos.Generate("MN", template.WithParams(template.Params{"nf": nf}))
		if err != nil {
			t.Fatalf("Generate(nf=%d) error: %v", nf, err)
		}
		return inst
	}
	two, four := gen(2), gen(4)

	if two.Size().Y != four.Size().Y {
		t.Errorf("height depends on nf: %d vs %d", two.Size().Y, four.Size().Y)
	}
	if two.Size().X != 200 || four.Size().X != 400 {
		t.Errorf("widths = %d, %d; want 200, 400", two.Size().X, four.Size().X)
	}

	g2, _ := two.LocalPin(PinGate)
	g4, _ := four.LocalPin(PinGate)
	if g2.Rect != geom.R(50, 300, 150, 300) {
		t.Errorf("nf=2 gate = %v", g2.Rect)
	}
	if got := g4.Rect.Width() - g2.Rect.Width(); got != 200 {
		t.Errorf("gate length difference = %d, want 200", got)
	}
}

func TestMOSPins(t *testing.T) {
	nmos, err := demo(t).Template("nmos")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		params template.Params
		want   map[template.PinID]geom.Rect
	}{
		{
			name:   "plain",
			params: template.Params{"nf": 3},
			want: map[template.PinID]geom.Rect{
				PinGate:   geom.R(50, 300, 250, 300),
				PinSource: geom.R(0, 500, 200, 500),
				PinDrain:  geom.R(100, 700, 300, 700),
				PinRail:   geom.R(0, 0, 300, 0),
			},
		},
		{
			name:   "tie source",
			params: template.Params{"nf": 4, "tie": "S"},
			want: map[template.PinID]geom.Rect{
				PinGate:  geom.R(50, 300, 350, 300),
				PinDrain: geom.R(100, 700, 300, 700),
				PinRail:  geom.R(0, 0, 400, 0),
			},
		},
		{
			name:   "trackswap",
			params: template.Params{"nf": 2, "trackswap": true},
			want: map[template.PinID]geom.Rect{
				PinGate:   geom.R(50, 300, 150, 300),
				PinSource: geom.R(0, 700, 200, 700),
				PinDrain:  geom.R(100, 500, 100, 500),
				PinRail:   geom.R(0, 0, 200, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := nmos.Generate("MN", template.WithParams(tt.params))
			if err != nil {
				t.Fatal(err)
			}
			got := make(map[template.PinID]geom.Rect)
			for _, id := range inst.PinIDs() {
				p, _ := inst.LocalPin(id)
				got[id] = p.Rect
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pins mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMOSParamErrors(t *testing.T) {
	nmos, err := demo(t).Template("nmos")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []template.Params{
		{"nf": 0},
		{"nf": 3, "tie": "S"},
		{"nf": 2, "tie": "G"},
		{"nf": 65},
	} {
		if _, err := nmos.Generate("MN", template.WithParams(p)); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("Generate(%v) error = %v, want INVALID_PARAMETER", p, err)
		}
	}
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `name = `},
		{"missing name", `
[[grids]]
name = "pg"
x = { elements = [0], range = 100 }
y = { elements = [0], range = 100 }
`},
		{"routing without layers", `
name = "t"
[[grids]]
name = "r"
kind = "routing"
x = { elements = [0], range = 100 }
y = { elements = [0], range = 100 }
`},
		{"unknown key", `
name = "t"
colour = "red"
[[grids]]
name = "pg"
x = { elements = [0], range = 100 }
y = { elements = [0], range = 100 }
`},
		{"bad template kind", `
name = "t"
[[grids]]
name = "pg"
x = { elements = [0], range = 100 }
y = { elements = [0], range = 100 }
[[templates]]
name = "x"
kind = "resistor"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFile([]byte(tt.src)); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ParseFile() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	if err := os.WriteFile(path, DemoSource(), 0o644); err != nil {
		t.Fatal(err)
	}

	tk, err := Load(&FileProvider{Path: path})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	tap, err := tk.Template("tap")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]template.PinID{PinRail}, tap.PinIDs()); diff != "" {
		t.Errorf("tap pins mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(&FileProvider{Path: filepath.Join(t.TempDir(), "missing.toml")}); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
