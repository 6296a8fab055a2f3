package grid

import (
	"testing"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/template"
)

func mustAxis(t *testing.T, elements []int, rng int) Axis {
	t.Helper()
	a, err := NewAxis(elements, rng)
	if err != nil {
		t.Fatalf("NewAxis(%v, %d) error: %v", elements, rng, err)
	}
	return a
}

func TestAxisValidate(t *testing.T) {
	tests := []struct {
		name     string
		elements []int
		rng      int
		wantErr  bool
	}{
		{"single", []int{0}, 100, false},
		{"multi", []int{0, 30, 70}, 100, false},
		{"zero range", []int{0}, 0, true},
		{"empty", nil, 100, true},
		{"not increasing", []int{0, 30, 30}, 100, true},
		{"outside range", []int{0, 100}, 100, true},
		{"negative", []int{-10, 20}, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAxis(tt.elements, tt.rng)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAxis() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAxisPhys(t *testing.T) {
	a := mustAxis(t, []int{0, 30, 70}, 100)

	tests := []struct {
		i, want int
	}{
		{0, 0}, {1, 30}, {2, 70}, {3, 100}, {5, 170}, {-1, -30}, {-3, -100}, {-4, -130},
	}
	for _, tt := range tests {
		if got := a.Phys(tt.i); got != tt.want {
			t.Errorf("Phys(%d) = %d, want %d", tt.i, got, tt.want)
		}
	}
}

func TestAxisIndex(t *testing.T) {
	a := mustAxis(t, []int{0, 30, 70}, 100)

	tests := []struct {
		c    int
		snap Snap
		want int
	}{
		{30, SnapDown, 1},
		{69, SnapDown, 1},
		{69, SnapNearest, 2},
		{50, SnapNearest, 1}, // tie goes down
		{51, SnapNearest, 2},
		{99, SnapNearest, 3},
		{-20, SnapDown, -1},
		{-20, SnapNearest, -1},
		{-5, SnapNearest, 0},
	}
	for _, tt := range tests {
		if got := a.Index(tt.c, tt.snap); got != tt.want {
			t.Errorf("Index(%d, %v) = %d, want %d", tt.c, tt.snap, got, tt.want)
		}
	}

	offset := mustAxis(t, []int{10, 60}, 100)
	if got := offset.Index(5, SnapDown); got != -1 {
		t.Errorf("Index(5) below first element = %d, want -1", got)
	}
	if got := offset.Phys(-1); got != -40 {
		t.Errorf("Phys(-1) = %d, want -40", got)
	}
}

func TestSnapIdempotence(t *testing.T) {
	axes := []Axis{
		mustAxis(t, []int{0}, 50),
		mustAxis(t, []int{0, 30, 70}, 100),
		mustAxis(t, []int{15, 40}, 72),
	}
	for _, a := range axes {
		for _, snap := range []Snap{SnapDown, SnapNearest} {
			for c := -250; c <= 250; c++ {
				i := a.Index(c, snap)
				if got := a.Index(a.Phys(i), snap); got != i {
					t.Fatalf("axis %v snap %v: Index(Phys(Index(%d))) = %d, want %d", a, snap, c, got, i)
				}
				if j, ok := a.IndexExact(a.Phys(i)); !ok || j != i {
					t.Fatalf("IndexExact(Phys(%d)) = %d, %v", i, j, ok)
				}
			}
		}
	}
}

func TestMNExact(t *testing.T) {
	g := &Grid{Name: "routing", X: mustAxis(t, []int{0}, 50), Y: mustAxis(t, []int{0}, 100)}

	mn, err := g.MNExact(geom.Pt(250, 300))
	if err != nil {
		t.Fatal(err)
	}
	if mn != geom.Pt(5, 3) {
		t.Errorf("MNExact() = %v, want [5, 3]", mn)
	}
	if _, err := g.MNExact(geom.Pt(260, 300)); !errors.Is(err, errors.ErrCodeUnalignedEndpoint) {
		t.Errorf("MNExact() off-tick error = %v, want UNALIGNED_ENDPOINT", err)
	}
	if got := g.MN(geom.Pt(260, 349)); got != geom.Pt(5, 3) {
		t.Errorf("MN() = %v, want [5, 3]", got)
	}
	if got := g.RectXY(geom.R(5, 3, 1, 17)); got != geom.R(50, 300, 250, 1700) {
		t.Errorf("RectXY() = %v", got)
	}
}

func TestParseSnap(t *testing.T) {
	for in, want := range map[string]Snap{"": SnapDown, "down": SnapDown, "Nearest": SnapNearest} {
		got, err := ParseSnap(in)
		if err != nil || got != want {
			t.Errorf("ParseSnap(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSnap("up"); err == nil {
		t.Error("ParseSnap(up) should fail")
	}
}

type extent geom.Rect

func (e extent) Extent() geom.Rect { return geom.Rect(e) }

func TestBBox(t *testing.T) {
	g := &Grid{Name: "routing", X: mustAxis(t, []int{0}, 50), Y: mustAxis(t, []int{0}, 100)}

	tests := []struct {
		name  string
		items []Extent
		want  geom.Rect
	}{
		{
			name:  "single wire",
			items: []Extent{extent(geom.R(100, 300, 100, 900))},
			want:  geom.R(2, 3, 2, 9),
		},
		{
			name: "wire and via",
			items: []Extent{
				extent(geom.R(100, 300, 400, 300)),
				extent(geom.R(250, 700, 250, 700)),
			},
			want: geom.R(2, 3, 8, 7),
		},
		{
			name:  "off-tick widens outwards",
			items: []Extent{extent(geom.R(120, 310, 180, 390))},
			want:  geom.R(2, 3, 4, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.BBox(tt.items...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("BBox() = %v, want %v", got, tt.want)
			}
			phys := g.RectXY(got)
			for _, it := range tt.items {
				if !phys.Contains(it.Extent()) {
					t.Errorf("BBox %v does not contain %v", phys, it.Extent())
				}
			}
		})
	}

	if _, err := g.BBox(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("BBox() of nothing error = %v, want INVALID_INPUT", err)
	}
}

func TestAnchors(t *testing.T) {
	pg := &Grid{Name: "placement", X: mustAxis(t, []int{0}, 100), Y: mustAxis(t, []int{0}, 1000)}
	tmpl, err := template.NewFixed("block", template.Shape{Bounds: geom.R(0, 0, 400, 1000)})
	if err != nil {
		t.Fatal(err)
	}

	for _, tr := range []geom.Transform{geom.R0, geom.MX, geom.MY, geom.R180} {
		t.Run(tr.String(), func(t *testing.T) {
			inst, err := tmpl.Generate("I0", template.WithTransform(tr))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := pg.TopLeft(inst); !errors.Is(err, errors.ErrCodeUnplacedInstance) {
				t.Fatalf("TopLeft() unplaced error = %v, want UNPLACED_INSTANCE", err)
			}

			inst.SetOrigin(pg.XY(geom.Pt(2, 1)))

			checks := []struct {
				name string
				fn   func(*template.Instance) (geom.Point, error)
				want geom.Point
			}{
				{"BottomLeft", pg.BottomLeft, geom.Pt(2, 1)},
				{"BottomRight", pg.BottomRight, geom.Pt(6, 1)},
				{"TopLeft", pg.TopLeft, geom.Pt(2, 2)},
				{"TopRight", pg.TopRight, geom.Pt(6, 2)},
				{"HeightVec", pg.HeightVec, geom.Pt(0, 1)},
				{"WidthVec", pg.WidthVec, geom.Pt(4, 0)},
			}
			for _, c := range checks {
				got, err := c.fn(inst)
				if err != nil {
					t.Fatalf("%s() error: %v", c.name, err)
				}
				if got != c.want {
					t.Errorf("%s() = %v, want %v", c.name, got, c.want)
				}
			}

			// Anchors follow the instance when it moves.
			inst.SetOrigin(pg.XY(geom.Pt(10, 0)))
			if got, _ := pg.TopLeft(inst); got != geom.Pt(10, 1) {
				t.Errorf("TopLeft() after move = %v, want [10, 1]", got)
			}
		})
	}
}

func TestRoutingGrid(t *testing.T) {
	rg := &RoutingGrid{
		Grid:    Grid{Name: "routing_23", X: mustAxis(t, []int{0}, 50), Y: mustAxis(t, []int{0}, 100)},
		HLayer:  "M2",
		VLayer:  "M3",
		HWidth:  20,
		VWidth:  30,
		Via:     "via_M2_M3",
		Primary: Vertical,
	}
	if err := rg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if d, err := rg.Segment(geom.Pt(1, 3), geom.Pt(7, 3)); err != nil || d != Horizontal {
		t.Errorf("Segment(row) = %v, %v", d, err)
	}
	if d, err := rg.Segment(geom.Pt(1, 3), geom.Pt(1, 9)); err != nil || d != Vertical {
		t.Errorf("Segment(column) = %v, %v", d, err)
	}
	if _, err := rg.Segment(geom.Pt(1, 3), geom.Pt(2, 4)); !errors.Is(err, errors.ErrCodeUnalignedEndpoint) {
		t.Errorf("Segment(diagonal) error = %v, want UNALIGNED_ENDPOINT", err)
	}
	if _, err := rg.Segment(geom.Pt(1, 3), geom.Pt(1, 3)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Segment(zero) error = %v, want INVALID_INPUT", err)
	}

	if rg.Layer(Vertical) != "M3" || rg.Width(Horizontal) != 20 {
		t.Error("layer/width lookup mismatch")
	}
	if d, _ := rg.Orientation(geom.R(0, 0, 3, 3)); d != Vertical {
		t.Errorf("Orientation(2-D) = %v, want primary", d)
	}
	if _, err := rg.Orientation(geom.R(3, 3, 3, 3)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Orientation(point) error = %v, want INVALID_INPUT", err)
	}
}

func TestSet(t *testing.T) {
	s := NewSet()
	pg := &Grid{Name: "placement", X: mustAxis(t, []int{0}, 100), Y: mustAxis(t, []int{0}, 1000)}
	if err := s.AddPlacement(pg); err != nil {
		t.Fatal(err)
	}
	rg := &RoutingGrid{Grid: Grid{Name: "placement", X: pg.X, Y: pg.Y}, HLayer: "M2", VLayer: "M3", Via: "v23"}
	if err := s.AddRouting(rg); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate name error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.Routing("placement"); !errors.Is(err, errors.ErrCodeMissingTemplate) {
		t.Errorf("Routing() miss error = %v, want MISSING_TEMPLATE_OR_GRID", err)
	}
	if g, err := s.Lookup("placement"); err != nil || g != pg {
		t.Errorf("Lookup() = %v, %v", g, err)
	}
}
