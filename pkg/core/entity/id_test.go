package entity

import (
	"slices"
	"testing"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

func TestNewIDsAreOrdered(t *testing.T) {
	ids := make([]ID, 50)
	for i := range ids {
		ids[i] = New(ModelSpace)
	}
	if !slices.IsSortedFunc(ids, ID.Compare) {
		t.Error("freshly minted identifiers are not in creation order")
	}
	seen := NewSet(ids...)
	if len(seen) != len(ids) {
		t.Errorf("got %d distinct identifiers, want %d", len(seen), len(ids))
	}
}

func TestParse(t *testing.T) {
	m := NewModelID()
	parsed, err := ParseModelID(m.String())
	if err != nil {
		t.Fatalf("ParseModelID: %v", err)
	}
	if parsed != m {
		t.Errorf("ParseModelID = %v, want %v", parsed, m)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "not-a-uuid"},
		{"truncated", m.String()[:20]},
		{"nil uuid", "00000000-0000-0000-0000-000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseViewID(tt.input)
			if !errors.Is(err, errors.ErrCodeIdentifierFormat) {
				t.Errorf("ParseViewID(%q) error = %v, want IDENTIFIER_FORMAT", tt.input, err)
			}
		})
	}
}

func TestSpacesDoNotCollide(t *testing.T) {
	v := NewViewID()
	asModel, err := Parse(ModelSpace, v.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if asModel == v.ID() {
		t.Error("model and view identifiers with equal UUIDs compare equal")
	}
	if _, ok := v.ID().ModelID(); ok {
		t.Error("view identifier narrowed to model identifier")
	}
	if asModel.Compare(v.ID()) >= 0 {
		t.Error("model identifiers should sort before view identifiers")
	}
}

func TestTagged(t *testing.T) {
	id := NewViewID().ID()
	text, err := id.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var got ID
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got != id {
		t.Errorf("tagged form decoded to %v, want %v", got.Tagged(), id.Tagged())
	}

	if _, err := ParseTagged("thing:" + id.String()); !errors.Is(err, errors.ErrCodeIdentifierFormat) {
		t.Errorf("unknown space error = %v", err)
	}
	bare, err := ParseTagged(id.String())
	if err != nil || bare.Space() != ModelSpace {
		t.Errorf("bare uuid parsed as %v, %v", bare.Tagged(), err)
	}
}
