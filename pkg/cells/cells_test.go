package cells

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/observability"
	"github.com/matzehuels/cellforge/pkg/tech"
	"github.com/matzehuels/cellforge/pkg/templatedb"
)

func newLib(t *testing.T) *database.Library {
	t.Helper()
	tk, err := tech.Demo()
	if err != nil {
		t.Fatal(err)
	}
	lib, err := database.NewLibrary("logic_generated", tk)
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

type pinSummary struct {
	Grid, Layer string
	MN          geom.Rect
	Net         string
}

func summarize(d *database.Design) map[string]pinSummary {
	out := make(map[string]pinSummary)
	for _, p := range d.Pins() {
		out[p.Name] = pinSummary{Grid: p.Grid, Layer: p.Layer, MN: p.MN, Net: p.Net}
	}
	return out
}

func r23(x0, y0, x1, y1 int, net string) pinSummary {
	return pinSummary{Grid: "routing_23_cmos", Layer: "M3", MN: geom.R(x0, y0, x1, y1), Net: net}
}

func r12(x0, y0, x1, y1 int, net string) pinSummary {
	return pinSummary{Grid: "routing_12_cmos", Layer: "M2", MN: geom.R(x0, y0, x1, y1), Net: net}
}

func TestNAND(t *testing.T) {
	tests := []struct {
		nf       int
		pins     map[string]pinSummary
		elements int
		bounds   geom.Rect
	}{
		{
			nf: 2,
			pins: map[string]pinSummary{
				"A":   r23(4, 3, 4, 17, "A"),
				"B":   r23(1, 3, 1, 17, "B"),
				"OUT": r23(6, 5, 6, 13, "OUT"),
				"VSS": r12(0, 0, 8, 0, "VSS"),
				"VDD": r12(0, 20, 8, 20, "VDD"),
			},
			elements: 15,
			bounds:   geom.R(0, 0, 400, 2000),
		},
		{
			nf: 4,
			pins: map[string]pinSummary{
				"A":   r23(9, 3, 9, 17, "A"),
				"B":   r23(1, 3, 1, 17, "B"),
				"OUT": r23(14, 5, 14, 13, "OUT"),
				"VSS": r12(0, 0, 16, 0, "VSS"),
				"VDD": r12(0, 20, 16, 20, "VDD"),
			},
			elements: 13,
			bounds:   geom.R(0, 0, 800, 2000),
		},
	}
	for _, tt := range tests {
		t.Run(CellName("nand", tt.nf), func(t *testing.T) {
			lib := newLib(t)
			d, err := NAND(lib, tt.nf, Options{})
			if err != nil {
				t.Fatalf("NAND() error: %v", err)
			}
			if d.Name() != CellName("nand", tt.nf) || d.LibraryName() != "logic_generated" {
				t.Errorf("design = %s in %s", d.Name(), d.LibraryName())
			}
			if diff := cmp.Diff([]string{"A", "B", "OUT", "VSS", "VDD"}, PinNames(d)); diff != "" {
				t.Errorf("pin order mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.pins, summarize(d)); diff != "" {
				t.Errorf("pins mismatch (-want +got):\n%s", diff)
			}
			if got := len(d.Elements()); got != tt.elements {
				t.Errorf("elements = %d, want %d", got, tt.elements)
			}
			if b, _ := d.Bounds(); b != tt.bounds {
				t.Errorf("bounds = %v, want %v", b, tt.bounds)
			}
		})
	}
}

func TestNANDPlacement(t *testing.T) {
	d, err := NAND(newLib(t), 2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]geom.Point{
		"MN0": geom.Pt(0, 0),
		"MP0": geom.Pt(0, 1000),
		"MN1": geom.Pt(200, 0),
		"MP1": geom.Pt(200, 1000),
	}
	for name, origin := range want {
		inst, ok := d.Instance(name)
		if !ok {
			t.Fatalf("instance %s missing", name)
		}
		if got, _ := inst.Origin(); got != origin {
			t.Errorf("%s origin = %v, want %v", name, got, origin)
		}
	}
	mp0, _ := d.Instance("MP0")
	if mp0.Transform() != geom.MX {
		t.Errorf("MP0 transform = %v, want MX", mp0.Transform())
	}
}

func TestTInv(t *testing.T) {
	d, err := TInv(newLib(t), 2, Options{})
	if err != nil {
		t.Fatalf("TInv() error: %v", err)
	}
	want := map[string]pinSummary{
		"I":   r23(1, 3, 1, 17, "I"),
		"EN":  r23(8, 3, 8, 17, "EN"),
		"ENB": r23(7, 3, 7, 17, "ENB"),
		"O":   r23(6, 5, 6, 15, "O"),
		"VSS": r12(0, 0, 8, 0, "VSS"),
		"VDD": r12(0, 20, 8, 20, "VDD"),
	}
	if diff := cmp.Diff(want, summarize(d)); diff != "" {
		t.Errorf("pins mismatch (-want +got):\n%s", diff)
	}
}

func TestTInvHS(t *testing.T) {
	d, err := TInvHS(newLib(t), 4, Options{})
	if err != nil {
		t.Fatalf("TInvHS() error: %v", err)
	}
	if diff := cmp.Diff([]string{"I", "EN", "ENB", "O0", "O1", "VSS", "VDD"}, PinNames(d)); diff != "" {
		t.Errorf("pin order mismatch (-want +got):\n%s", diff)
	}
	pins := summarize(d)
	if diff := cmp.Diff(r23(10, 5, 10, 15, "O:"), pins["O0"]); diff != "" {
		t.Errorf("O0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(r23(14, 5, 14, 15, "O:"), pins["O1"]); diff != "" {
		t.Errorf("O1 mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratorErrors(t *testing.T) {
	lib := newLib(t)

	if _, err := NAND(lib, 3, Options{}); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("NAND(nf=3) error = %v, want INVALID_PARAMETER", err)
	}
	if _, err := NAND(lib, 2, Options{NMOS: "nope"}); !errors.Is(err, errors.ErrCodeMissingTemplate) {
		t.Errorf("NAND(missing template) error = %v, want MISSING_TEMPLATE_OR_GRID", err)
	}
	if len(lib.Designs()) != 0 {
		t.Errorf("failed generators left designs: %d", len(lib.Designs()))
	}

	if _, err := NAND(lib, 2, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := NAND(lib, 2, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NAND twice error = %v, want INVALID_INPUT", err)
	}
	if _, err := Lookup("nor"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Lookup(nor) error = %v, want NOT_FOUND", err)
	}
}

func TestLookup(t *testing.T) {
	if diff := cmp.Diff([]string{"nand", "tinv", "tinv_hs"}, Kinds()); diff != "" {
		t.Errorf("Kinds() mismatch (-want +got):\n%s", diff)
	}
	lib := newLib(t)
	for _, kind := range Kinds() {
		gen, err := Lookup(kind)
		if err != nil {
			t.Fatal(err)
		}
		for _, nf := range []int{2, 4} {
			if _, err := gen(lib, nf, Options{}); err != nil {
				t.Errorf("%s nf=%d: %v", kind, nf, err)
			}
		}
	}
	if got := len(lib.Designs()); got != 6 {
		t.Errorf("library has %d designs, want 6", got)
	}
}

func TestPlan(t *testing.T) {
	tk, _ := tech.Demo()
	p, err := Plan(tk, "tinv", 2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	deps, err := p.Dependents("MN0")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"MP0", "MN1", "MP1"}, deps); diff != "" {
		t.Errorf("Dependents(MN0) mismatch (-want +got):\n%s", diff)
	}
	dot, err := p.ToDOT()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dot, "bottom_right(MP0)") {
		t.Errorf("ToDOT() missing MP1 anchor:\n%s", dot)
	}
}

// Generated cells export to a template file and come back as fixed
// templates a parent design can place.
func TestExportAndReuse(t *testing.T) {
	lib := newLib(t)
	path := filepath.Join(t.TempDir(), "logic_generated_templates.yaml")
	for _, nf := range []int{2, 4} {
		d, err := NAND(lib, nf, Options{})
		if err != nil {
			t.Fatal(err)
		}
		rec, err := templatedb.FromDesign(d)
		if err != nil {
			t.Fatal(err)
		}
		if err := templatedb.Export(rec, path, templatedb.ModeAppend); err != nil {
			t.Fatal(err)
		}
	}

	rec, err := templatedb.Import(path, "nand_2x")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Bounds.Rect() != geom.R(0, 0, 400, 2000) {
		t.Errorf("nand_2x bounds = %v", rec.Bounds)
	}
	a, _ := rec.Pin("A")
	if a.XY.Rect() != geom.R(200, 300, 200, 1700) || a.Layer != "M3" {
		t.Errorf("pin A = %+v", a)
	}

	tmpl, err := rec.Template()
	if err != nil {
		t.Fatal(err)
	}
	top, _ := database.NewDesign("nand_pair", lib.Tech())
	pg, _ := lib.Tech().Grid("placement_basic")
	for i, mn := range []geom.Point{{X: 0, Y: 0}, {X: 4, Y: 0}} {
		inst, err := tmpl.Generate(fmt.Sprintf("U%d", i))
		if err != nil {
			t.Fatal(err)
		}
		if err := top.Place(pg, inst, mn); err != nil {
			t.Fatal(err)
		}
	}
	if b, _ := top.Bounds(); b != geom.R(0, 0, 800, 2000) {
		t.Errorf("parent bounds = %v, want [[0, 0], [800, 2000]]", b)
	}
}

type recordingHooks struct {
	observability.NoopGeneratorHooks
	started []string
	failed  int
}

func (h *recordingHooks) OnGenerateStart(_ context.Context, cell string) {
	h.started = append(h.started, cell)
}

func (h *recordingHooks) OnGenerateComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	if err != nil {
		h.failed++
	}
}

func TestGeneratorHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetGeneratorHooks(hooks)
	t.Cleanup(observability.Reset)

	lib := newLib(t)
	if _, err := TInv(lib, 2, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := TInv(lib, 2, Options{}); err == nil {
		t.Fatal("second TInv succeeded")
	}
	if diff := cmp.Diff([]string{"tinv_2x"}, hooks.started); diff != "" {
		t.Errorf("started mismatch (-want +got):\n%s", diff)
	}
	if hooks.failed != 0 {
		t.Errorf("failed = %d, want 0", hooks.failed)
	}
}
