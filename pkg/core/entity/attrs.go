package entity

import (
	"maps"
	"slices"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Attrs holds the scalar attributes of a node. Values are string, bool,
// int64, float64 or []string. Decoded documents may also carry int and []any,
// which the getters accept.
type Attrs map[string]any

// Clone returns a copy of a with list values copied as well.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		switch v := v.(type) {
		case []string:
			out[k] = slices.Clone(v)
		case []any:
			out[k] = slices.Clone(v)
		default:
			out[k] = v
		}
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

func missing(key string) error {
	return errors.Structure("missing field %q", key).InField(key)
}

func mistyped(key string, v any, want string) error {
	return errors.Structure("field has type %T, want %s", v, want).InField(key)
}

// String returns a required string attribute.
func (a Attrs) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", mistyped(key, v, "string")
	}
	return s, nil
}

// OptString returns a string attribute, or def when absent.
func (a Attrs) OptString(key, def string) (string, error) {
	if _, ok := a[key]; !ok {
		return def, nil
	}
	return a.String(key)
}

// Bool returns a required boolean attribute.
func (a Attrs) Bool(key string) (bool, error) {
	v, ok := a[key]
	if !ok {
		return false, missing(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, mistyped(key, v, "bool")
	}
	return b, nil
}

// OptBool returns a boolean attribute, or def when absent.
func (a Attrs) OptBool(key string, def bool) (bool, error) {
	if _, ok := a[key]; !ok {
		return def, nil
	}
	return a.Bool(key)
}

// Int returns a required integer attribute.
func (a Attrs) Int(key string) (int64, error) {
	v, ok := a[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, mistyped(key, v, "integer")
	}
}

// OptInt returns an integer attribute, or def when absent.
func (a Attrs) OptInt(key string, def int64) (int64, error) {
	if _, ok := a[key]; !ok {
		return def, nil
	}
	return a.Int(key)
}

// Float returns a required numeric attribute. Integers are widened.
func (a Attrs) Float(key string) (float64, error) {
	v, ok := a[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, mistyped(key, v, "number")
	}
}

// OptFloat returns a numeric attribute, or def when absent.
func (a Attrs) OptFloat(key string, def float64) (float64, error) {
	if _, ok := a[key]; !ok {
		return def, nil
	}
	return a.Float(key)
}

// Strings returns a list-of-strings attribute. An absent key yields nil.
func (a Attrs) Strings(key string) ([]string, error) {
	v, ok := a[key]
	if !ok {
		return nil, nil
	}
	switch l := v.(type) {
	case []string:
		return slices.Clone(l), nil
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, mistyped(key, item, "string list element")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, mistyped(key, v, "string list")
	}
}

// AttrReader reads several attributes in a row and keeps the first error,
// so SetAttrs implementations can check once at the end.
type AttrReader struct {
	a   Attrs
	err error
}

// Reader returns an AttrReader over a.
func (a Attrs) Reader() *AttrReader { return &AttrReader{a: a} }

// Err returns the first error encountered.
func (r *AttrReader) Err() error { return r.err }

func (r *AttrReader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}

// String reads a required string.
func (r *AttrReader) String(key string) string {
	v, err := r.a.String(key)
	r.keep(err)
	return v
}

// OptString reads an optional string.
func (r *AttrReader) OptString(key string) string {
	v, err := r.a.OptString(key, "")
	r.keep(err)
	return v
}

// OptBool reads an optional boolean defaulting to false.
func (r *AttrReader) OptBool(key string) bool {
	v, err := r.a.OptBool(key, false)
	r.keep(err)
	return v
}

// OptInt reads an optional integer defaulting to 0.
func (r *AttrReader) OptInt(key string) int64 {
	v, err := r.a.OptInt(key, 0)
	r.keep(err)
	return v
}

// OptFloat reads an optional number defaulting to 0.
func (r *AttrReader) OptFloat(key string) float64 {
	v, err := r.a.OptFloat(key, 0)
	r.keep(err)
	return v
}

// Strings reads an optional string list.
func (r *AttrReader) Strings(key string) []string {
	v, err := r.a.Strings(key)
	r.keep(err)
	return v
}

// OneOf reads an optional string restricted to allowed values. An absent
// key yields allowed[0].
func (r *AttrReader) OneOf(key string, allowed ...string) string {
	v, err := r.a.OptString(key, allowed[0])
	if err != nil {
		r.keep(err)
		return allowed[0]
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	r.keep(errors.Structure("value %q not one of %v", v, allowed).InField(key))
	return allowed[0]
}
