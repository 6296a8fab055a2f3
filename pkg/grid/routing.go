package grid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
)

// Direction is the orientation of a wire segment.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses "horizontal"/"h" or "vertical"/"v".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	}
	return Horizontal, errors.New(errors.ErrCodeInvalidInput, "unknown direction %q", s)
}

// RoutingGrid is a grid that routes on two adjacent layers: horizontal wires
// on HLayer, vertical wires on VLayer, joined by Via.
type RoutingGrid struct {
	Grid

	HLayer, VLayer         string
	HWidth, VWidth         int
	HExtension, VExtension int
	Via                    string

	// Primary is the direction whose layer two-dimensional pins use.
	Primary Direction
}

// Validate checks the embedded grid and the layer assignment.
func (g *RoutingGrid) Validate() error {
	if err := g.Grid.Validate(); err != nil {
		return err
	}
	for _, name := range []string{g.HLayer, g.VLayer} {
		if err := errors.ValidateName("layer", name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "routing grid %s", g.Name)
		}
	}
	if err := errors.ValidateName("via", g.Via); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "routing grid %s", g.Name)
	}
	if g.HWidth < 0 || g.VWidth < 0 || g.HExtension < 0 || g.VExtension < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "routing grid %s: widths and extensions must be non-negative", g.Name)
	}
	return nil
}

// Layer returns the layer that wires of direction d are drawn on.
func (g *RoutingGrid) Layer(d Direction) string {
	if d == Vertical {
		return g.VLayer
	}
	return g.HLayer
}

// Width returns the drawn width of wires of direction d.
func (g *RoutingGrid) Width(d Direction) int {
	if d == Vertical {
		return g.VWidth
	}
	return g.HWidth
}

// Extension returns how far wires of direction d extend past their endpoints.
func (g *RoutingGrid) Extension(d Direction) int {
	if d == Vertical {
		return g.VExtension
	}
	return g.HExtension
}

// Segment returns the direction of the wire between two grid points. The
// points must share a row or a column and must differ.
func (g *RoutingGrid) Segment(a, b geom.Point) (Direction, error) {
	switch {
	case a == b:
		return 0, errors.New(errors.ErrCodeInvalidInput, "zero-length segment at %v", a)
	case a.Y == b.Y:
		return Horizontal, nil
	case a.X == b.X:
		return Vertical, nil
	}
	return 0, errors.New(errors.ErrCodeUnalignedEndpoint, "segment %v -> %v is neither horizontal nor vertical on grid %s", a, b, g.Name)
}

// Orientation returns the direction implied by a degenerate grid rectangle:
// Horizontal for a row, Vertical for a column, and Primary for a 2-D region.
// A point region is rejected.
func (g *RoutingGrid) Orientation(r geom.Rect) (Direction, error) {
	switch {
	case r.IsPoint():
		return 0, errors.New(errors.ErrCodeInvalidInput, "region %v is a single point", r)
	case r.Height() == 0:
		return Horizontal, nil
	case r.Width() == 0:
		return Vertical, nil
	}
	return g.Primary, nil
}
