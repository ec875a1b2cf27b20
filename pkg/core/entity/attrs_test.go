package entity

import (
	"slices"
	"testing"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

func TestAttrsGetters(t *testing.T) {
	a := Attrs{
		"name":     "Order",
		"abstract": true,
		"count":    int64(3),
		"width":    float64(1.5),
		"height":   int64(2),
		"tags":     []any{"a", "b"},
		"bad":      []any{"a", 1},
	}

	if s, err := a.String("name"); err != nil || s != "Order" {
		t.Errorf("String = %q, %v", s, err)
	}
	if b, err := a.Bool("abstract"); err != nil || !b {
		t.Errorf("Bool = %v, %v", b, err)
	}
	if n, err := a.Int("count"); err != nil || n != 3 {
		t.Errorf("Int = %v, %v", n, err)
	}
	if f, err := a.Float("height"); err != nil || f != 2 {
		t.Errorf("Float widening = %v, %v", f, err)
	}
	if l, err := a.Strings("tags"); err != nil || !slices.Equal(l, []string{"a", "b"}) {
		t.Errorf("Strings = %v, %v", l, err)
	}
	if s, err := a.OptString("comment", "none"); err != nil || s != "none" {
		t.Errorf("OptString default = %q, %v", s, err)
	}
}

func TestAttrsErrors(t *testing.T) {
	a := Attrs{"name": int64(1), "tags": []any{"a", 1}}

	tests := []struct {
		name  string
		field string
		get   func() error
	}{
		{"missing", "stereotype", func() error { _, err := a.String("stereotype"); return err }},
		{"mistyped", "name", func() error { _, err := a.String("name"); return err }},
		{"mistyped optional", "name", func() error { _, err := a.OptBool("name", false); return err }},
		{"bad list element", "tags", func() error { _, err := a.Strings("tags"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.get()
			if !errors.Is(err, errors.ErrCodeStructure) {
				t.Fatalf("error = %v, want STRUCTURE_ERROR", err)
			}
			if e := err.(*errors.Error); e.Field != tt.field {
				t.Errorf("Field = %q, want %q", e.Field, tt.field)
			}
		})
	}
}

func TestAttrsClone(t *testing.T) {
	a := Attrs{"tags": []string{"x"}}
	b := a.Clone()
	b["tags"].([]string)[0] = "y"
	if a["tags"].([]string)[0] != "x" {
		t.Error("Clone shares list storage")
	}
}
