package entity_test

import (
	"testing"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/entity/entitytest"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

func TestRegistryNew(t *testing.T) {
	reg := entitytest.Registry()

	n, err := reg.New(entitytest.KindItem, entity.New(entity.ModelSpace))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Kind() != entitytest.KindItem {
		t.Errorf("Kind = %v", n.Kind())
	}

	if _, err := reg.New("test.unknown", entity.New(entity.ModelSpace)); !errors.Is(err, errors.ErrCodeStructure) {
		t.Errorf("unknown kind error = %v", err)
	}
	if _, err := reg.New(entitytest.KindItem, entity.New(entity.ViewSpace)); !errors.Is(err, errors.ErrCodeStructure) {
		t.Errorf("space mismatch error = %v", err)
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("registering a kind twice did not panic")
		}
	}()
	reg := entitytest.Registry()
	reg.Register(entity.KindSpec{
		Kind: entitytest.KindItem, Space: entity.ModelSpace,
		New: func(id entity.ID) entity.Node { return nil },
	})
}

func TestOrphanRules(t *testing.T) {
	reg := entitytest.Registry()
	a, b, c := entitytest.NewItem("a"), entitytest.NewItem("b"), entitytest.NewItem("c")
	edge := entitytest.NewEdge(a, b)
	hyper := entitytest.NewHyper([]entity.Node{a, b}, []entity.Node{c})

	tests := []struct {
		name     string
		node     entity.Node
		deleting entity.Set
		want     bool
	}{
		{"edge untouched", edge, entity.NewSet(c.ID()), false},
		{"edge loses source", edge, entity.NewSet(a.ID()), true},
		{"hyper loses one source", hyper, entity.NewSet(a.ID()), false},
		{"hyper loses all sources", hyper, entity.NewSet(a.ID(), b.ID()), true},
		{"hyper loses all targets", hyper, entity.NewSet(c.ID()), true},
		{"item never orphaned", a, entity.NewSet(b.ID()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Orphaned(tt.node, tt.deleting); got != tt.want {
				t.Errorf("Orphaned = %v, want %v", got, tt.want)
			}
		})
	}
}
