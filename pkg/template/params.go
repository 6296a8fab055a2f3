package template

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/cellforge/pkg/errors"
)

// ParamKind is the value type of a template parameter.
type ParamKind int

const (
	KindInt ParamKind = iota
	KindBool
	KindString
)

func (k ParamKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// Parity constrains integer parameters such as finger counts.
type Parity int

const (
	AnyParity Parity = iota
	Even
	Odd
)

// ParamSpec declares one parameter of a template's domain.
type ParamSpec struct {
	Name    string
	Kind    ParamKind
	Default any

	// Integer bounds, inclusive. Max == 0 means unbounded.
	Min, Max int
	Parity   Parity

	// Allowed values for string parameters. Empty means any value.
	Choices []string
}

// Params holds parameter values keyed by name.
type Params map[string]any

// Int returns the named integer parameter, or 0.
func (p Params) Int(name string) int {
	v, _ := p[name].(int)
	return v
}

// Bool returns the named boolean parameter, or false.
func (p Params) Bool(name string) bool {
	v, _ := p[name].(bool)
	return v
}

// String returns the named string parameter, or "".
func (p Params) String(name string) string {
	v, _ := p[name].(string)
	return v
}

// resolve validates p against specs and returns a new map with defaults
// filled in. The input map is not modified.
func resolve(specs []ParamSpec, p Params) (Params, error) {
	known := make(map[string]ParamSpec, len(specs))
	for _, s := range specs {
		known[s.Name] = s
	}
	for _, name := range slices.Sorted(maps.Keys(p)) {
		if _, ok := known[name]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "unknown parameter %q", name)
		}
	}

	out := make(Params, len(specs))
	for _, s := range specs {
		v, ok := p[s.Name]
		if !ok {
			v = s.Default
		}
		if v == nil {
			continue
		}
		v, err := s.check(v)
		if err != nil {
			return nil, err
		}
		out[s.Name] = v
	}
	return out, nil
}

func (s ParamSpec) check(v any) (any, error) {
	switch s.Kind {
	case KindInt:
		n, ok := toInt(v)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be an integer, got %T", s.Name, v)
		}
		if n < s.Min {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be >= %d, got %d", s.Name, s.Min, n)
		}
		if s.Max != 0 && n > s.Max {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be <= %d, got %d", s.Name, s.Max, n)
		}
		switch {
		case s.Parity == Even && n%2 != 0:
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be even, got %d", s.Name, n)
		case s.Parity == Odd && n%2 == 0:
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be odd, got %d", s.Name, n)
		}
		return n, nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be a bool, got %T", s.Name, v)
		}
		return b, nil
	case KindString:
		str, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be a string, got %T", s.Name, v)
		}
		if len(s.Choices) > 0 && !slices.Contains(s.Choices, str) {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "%s must be one of %q, got %q", s.Name, s.Choices, str)
		}
		return str, nil
	}
	return nil, errors.New(errors.ErrCodeInternal, "parameter %s has unknown kind %v", s.Name, s.Kind)
}

// toInt accepts the integer types produced by Go literals and by TOML/YAML
// decoders (which yield int64).
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	}
	return 0, false
}
