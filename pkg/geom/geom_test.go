package geom

import "testing"

func TestRectNormalize(t *testing.T) {
	r := R(10, 40, 0, 5)
	if r.Min != Pt(0, 5) || r.Max != Pt(10, 40) {
		t.Errorf("R() = %v, want [[0, 5], [10, 40]]", r)
	}
	if r.Width() != 10 || r.Height() != 35 {
		t.Errorf("Width/Height = %d/%d, want 10/35", r.Width(), r.Height())
	}
}

func TestRectPredicates(t *testing.T) {
	tests := []struct {
		name       string
		r          Rect
		point      bool
		degenerate bool
	}{
		{"point", R(3, 3, 3, 3), true, true},
		{"horizontal line", R(0, 3, 5, 3), false, true},
		{"vertical line", R(2, 0, 2, 9), false, true},
		{"box", R(0, 0, 4, 4), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsPoint(); got != tt.point {
				t.Errorf("IsPoint() = %v, want %v", got, tt.point)
			}
			if got := tt.r.IsDegenerate(); got != tt.degenerate {
				t.Errorf("IsDegenerate() = %v, want %v", got, tt.degenerate)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	if _, ok := Bounds(); ok {
		t.Error("Bounds() of nothing should report false")
	}
	got, ok := Bounds(R(0, 0, 2, 2), R(5, -1, 6, 1), R(1, 1, 1, 8))
	if !ok {
		t.Fatal("Bounds() reported false")
	}
	if want := R(0, -1, 6, 8); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if !got.Contains(R(5, -1, 6, 1)) {
		t.Error("union should contain its inputs")
	}
}

func TestTransformApply(t *testing.T) {
	bounds := R(0, 0, 400, 1000)
	pin := R(50, 300, 350, 300)

	tests := []struct {
		tr   Transform
		want Rect
	}{
		{R0, R(50, 300, 350, 300)},
		{MX, R(50, 700, 350, 700)},
		{MY, R(50, 300, 350, 300)},
		{R180, R(50, 700, 350, 700)},
	}

	for _, tt := range tests {
		t.Run(tt.tr.String(), func(t *testing.T) {
			if got := tt.tr.ApplyRect(pin, bounds); got != tt.want {
				t.Errorf("ApplyRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformAsymmetric(t *testing.T) {
	bounds := R(0, 0, 100, 30)
	p := Pt(10, 5)

	if got := MY.ApplyPoint(p, bounds); got != Pt(90, 5) {
		t.Errorf("MY = %v, want [90, 5]", got)
	}
	if got := R180.ApplyPoint(p, bounds); got != Pt(90, 25) {
		t.Errorf("R180 = %v, want [90, 25]", got)
	}
	// Mirroring twice is the identity.
	for _, tr := range []Transform{R0, MX, MY, R180} {
		if got := tr.ApplyPoint(tr.ApplyPoint(p, bounds), bounds); got != p {
			t.Errorf("%v applied twice = %v, want %v", tr, got, p)
		}
	}
	// The boundary maps onto itself.
	for _, tr := range []Transform{MX, MY, R180} {
		if got := tr.ApplyRect(bounds, bounds); got != bounds {
			t.Errorf("%v moved the boundary: %v", tr, got)
		}
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		in      string
		want    Transform
		wantErr bool
	}{
		{"", R0, false},
		{"R0", R0, false},
		{"mx", MX, false},
		{"MY", MY, false},
		{"R180", R180, false},
		{"R90", R0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransform(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTransform(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTransform(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
