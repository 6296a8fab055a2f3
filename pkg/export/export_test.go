package export

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/tech"
	"github.com/matzehuels/cellforge/pkg/template"
	"github.com/matzehuels/cellforge/pkg/templatedb"
)

func sample(t *testing.T) (*database.Library, *database.Design) {
	t.Helper()
	tk, err := tech.Demo()
	if err != nil {
		t.Fatal(err)
	}
	pg, _ := tk.Grid("placement_basic")
	r23, _ := tk.RoutingGrid("routing_23_cmos")
	nmos, _ := tk.Template("nmos")

	lib, _ := database.NewLibrary("logic_generated", tk)
	d, _ := database.NewDesign("sample", tk)
	if err := lib.Append(d); err != nil {
		t.Fatal(err)
	}
	inst, err := nmos.Generate("MN0", template.WithParams(template.Params{"nf": 2}))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Place(pg, inst, geom.Pt(0, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Route(r23, []geom.Point{{X: 2, Y: 3}, {X: 2, Y: 9}}, database.WithVias(true, false), database.WithNet("A")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Pin("A", r23, geom.R(2, 3, 2, 9), "A"); err != nil {
		t.Fatal(err)
	}
	return lib, d
}

func TestSVG(t *testing.T) {
	_, d := sample(t)
	out, err := Bytes(NewSVG(), d)
	if err != nil {
		t.Fatalf("Bytes() error: %v", err)
	}
	svg := string(out)
	for _, want := range []string{
		"<svg",
		`id="inst-MN0"`,
		`class="layer-M3" fill="#5cb85c"`,
		`class="via-via_M2_M3"`,
		">A</text>",
		"MN0 (nmos)",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	plain, _ := Bytes(NewSVG(WithoutLabels(), WithLayerColor("M3", "#000fff")), d)
	if strings.Contains(string(plain), "<text") {
		t.Error("WithoutLabels() still drew labels")
	}
	if !strings.Contains(string(plain), `fill="#000fff"`) {
		t.Error("WithLayerColor() not applied")
	}
}

func TestSVGFrame(t *testing.T) {
	// The M3 wire from y=300 to y=900 extends 20 beyond each end; the
	// instance spans [0, 1000] so the frame is the instance plus margin.
	_, d := sample(t)
	out, _ := Bytes(NewSVG(WithMargin(0)), d)
	if !strings.Contains(string(out), `viewBox="0 0 200 1000"`) {
		t.Errorf("unexpected frame:\n%s", out)
	}
	// Wire drawn rect: x 80..120, y 280..920, flipped to top 1000-920.
	if !strings.Contains(string(out), `<rect x="80" y="80" width="40" height="640" class="layer-M3"`) {
		t.Errorf("wire not drawn at expected position:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	_, d := sample(t)
	e := NewJSON(WithRunID("run-1"), WithIndent())
	out, err := Bytes(e, d)
	if err != nil {
		t.Fatal(err)
	}
	var got jsonDesign
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Design != "sample" || got.Library != "logic_generated" || got.Tech != "demo" {
		t.Errorf("header = %+v", got)
	}
	if got.Bounds == nil || *got.Bounds != (box{{0, 0}, {200, 1000}}) {
		t.Errorf("bounds = %v", got.Bounds)
	}
	if diff := cmp.Diff([]string{"via", "wire"}, []string{got.Elements[0].Kind, got.Elements[1].Kind}); diff != "" {
		t.Errorf("element kinds mismatch (-want +got):\n%s", diff)
	}
	want := jsonElement{
		ID: got.Elements[1].ID, Kind: "wire", Grid: "routing_23_cmos", Layer: "M3",
		MN: box{{2, 3}, {2, 9}}, XY: box{{100, 300}, {100, 900}}, Drawn: box{{80, 280}, {120, 920}},
		Width: 40, Extension: 20, Net: "A",
	}
	if diff := cmp.Diff(want, got.Elements[1]); diff != "" {
		t.Errorf("wire mismatch (-want +got):\n%s", diff)
	}
	if len(got.Instances) != 1 || got.Instances[0].Transform != "R0" {
		t.Errorf("instances = %+v", got.Instances)
	}

	if NewJSON().RunID() == NewJSON().RunID() {
		t.Error("run IDs are not unique")
	}
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		e, err := New(f)
		if err != nil {
			t.Errorf("New(%q) error: %v", f, err)
			continue
		}
		if e.Format() != f {
			t.Errorf("New(%q).Format() = %q", f, e.Format())
		}
	}
	if _, err := New("gds"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("New(gds) error = %v, want UNSUPPORTED", err)
	}
}

func TestWriteLibrary(t *testing.T) {
	lib, _ := sample(t)
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteLibrary(NewJSON(), lib, dir)
	if err != nil {
		t.Fatalf("WriteLibrary() error: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "sample.json")}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Error(err)
	}
}

func TestCheck(t *testing.T) {
	_, d := sample(t)
	if err := Check(d); err != nil {
		t.Errorf("Check() error: %v", err)
	}
}

func TestRaster(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	_, d := sample(t)
	out, err := Bytes(NewRaster("png", 1), d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestExportRecord(t *testing.T) {
	rec := templatedb.Record{
		Cell:    "nand_2x",
		Library: "logic_generated",
		Bounds:  templatedb.Box{{0, 0}, {400, 2000}},
		Pins: []templatedb.PinRecord{
			{Name: "A", Layer: "M3", Grid: "routing_23_cmos", MN: templatedb.Box{{4, 3}, {4, 17}}, XY: templatedb.Box{{200, 300}, {200, 1700}}, Net: "A"},
		},
	}
	var buf bytes.Buffer
	if err := NewSVG(WithMargin(0), WithLayerColor("M3", "#123456")).ExportRecord(rec, &buf); err != nil {
		t.Fatalf("ExportRecord() error: %v", err)
	}
	svg := buf.String()
	for _, want := range []string{
		`viewBox="0 0 400 2000"`,
		`<rect x="0" y="0" width="400" height="2000" id="boundary"`,
		`<rect x="180" y="280" width="40" height="1440" id="pin-A" class="layer-M3" fill="#123456"`,
		">A</text>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("record SVG missing %q:\n%s", want, svg)
		}
	}
}
