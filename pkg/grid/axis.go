package grid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cellforge/pkg/errors"
)

// Snap selects how an off-tick physical coordinate maps to a grid index.
type Snap int

const (
	// SnapDown picks the largest tick at or below the coordinate.
	SnapDown Snap = iota
	// SnapNearest picks the closest tick; ties go to the lower tick.
	SnapNearest
)

func (s Snap) String() string {
	switch s {
	case SnapDown:
		return "down"
	case SnapNearest:
		return "nearest"
	}
	return fmt.Sprintf("Snap(%d)", int(s))
}

// ParseSnap parses "down" or "nearest". The empty string parses as SnapDown.
func ParseSnap(s string) (Snap, error) {
	switch strings.ToLower(s) {
	case "", "down":
		return SnapDown, nil
	case "nearest":
		return SnapNearest, nil
	}
	return SnapDown, errors.New(errors.ErrCodeInvalidInput, "unknown snap policy %q (must be down or nearest)", s)
}

// Axis is a periodic sequence of ticks along one dimension. Tick i lies at
// floor(i/n)*Range + Elements[i mod n], where n = len(Elements). Negative
// indices extend the sequence below zero.
type Axis struct {
	Elements []int
	Range    int
}

// NewAxis validates and returns an axis.
func NewAxis(elements []int, rng int) (Axis, error) {
	a := Axis{Elements: append([]int(nil), elements...), Range: rng}
	return a, a.Validate()
}

// Validate checks that the elements are strictly increasing and lie in [0, Range).
func (a Axis) Validate() error {
	if a.Range <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "axis range must be positive, got %d", a.Range)
	}
	if len(a.Elements) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "axis has no elements")
	}
	for i, e := range a.Elements {
		if e < 0 || e >= a.Range {
			return errors.New(errors.ErrCodeInvalidInput, "axis element %d out of range [0, %d)", e, a.Range)
		}
		if i > 0 && e <= a.Elements[i-1] {
			return errors.New(errors.ErrCodeInvalidInput, "axis elements must be strictly increasing: %v", a.Elements)
		}
	}
	return nil
}

// Phys returns the physical coordinate of tick i.
func (a Axis) Phys(i int) int {
	q, r := divMod(i, len(a.Elements))
	return q*a.Range + a.Elements[r]
}

// Index returns the tick index for physical coordinate c under the given
// snap policy. Index(Phys(i), s) == i for every i and s.
func (a Axis) Index(c int, snap Snap) int {
	lo := a.floor(c)
	if snap == SnapNearest {
		if d := c - a.Phys(lo); d > 0 && a.Phys(lo+1)-c < d {
			return lo + 1
		}
	}
	return lo
}

// IndexExact returns the tick index of c and false if c is not on a tick.
func (a Axis) IndexExact(c int) (int, bool) {
	i := a.floor(c)
	return i, a.Phys(i) == c
}

// floor returns the index of the largest tick <= c.
func (a Axis) floor(c int) int {
	n := len(a.Elements)
	q, rem := divMod(c, a.Range)
	k := -1
	for j, e := range a.Elements {
		if e > rem {
			break
		}
		k = j
	}
	if k < 0 {
		// rem lies below the first element: the tick is the last one of the
		// previous period.
		return q*n - 1
	}
	return q*n + k
}

// divMod is floor division with a non-negative remainder.
func divMod(a, b int) (q, r int) {
	q, r = a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}
