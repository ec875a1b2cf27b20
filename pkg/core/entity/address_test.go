package entity_test

import (
	"testing"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/entity/entitytest"
)

func names(nodes []entity.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Attrs()["name"].(string)
	}
	return out
}

func TestFind(t *testing.T) {
	a, b := entitytest.NewItem("a"), entitytest.NewItem("b")
	inner := entitytest.NewFolder("inner", b)
	root := entitytest.NewFolder("root", a, inner)

	n, at, ok := entity.Find(root, b.ID())
	if !ok || n != b {
		t.Fatalf("Find(b) = %v, %v", n, ok)
	}
	if at.Parent != inner.ID() || at.Slot != "items" || at.Index != 0 {
		t.Errorf("address = %+v", at)
	}

	if _, _, ok := entity.Find(root, entity.New(entity.ModelSpace)); ok {
		t.Error("Find returned a node for an unknown identifier")
	}
}

func TestWalkSkipsReferences(t *testing.T) {
	outside := entitytest.NewItem("outside")
	a := entitytest.NewItem("a")
	a.Peer = outside
	root := entitytest.NewFolder("root", a)

	var visited []entity.ID
	entity.Walk(root, func(n entity.Node, _ entity.Address) bool {
		visited = append(visited, n.ID())
		return true
	})
	if len(visited) != 2 {
		t.Errorf("visited %d nodes, want 2 (reference targets are not owned)", len(visited))
	}
}

func TestRemoveRestore(t *testing.T) {
	a, b, c := entitytest.NewItem("a"), entitytest.NewItem("b"), entitytest.NewItem("c")
	d := entitytest.NewItem("d")
	inner := entitytest.NewFolder("inner", d)
	root := entitytest.NewFolder("root", a, b, inner, c)

	removed := entity.Remove(root, entity.NewSet(a.ID(), b.ID(), inner.ID(), d.ID()))
	if len(removed) != 3 {
		t.Fatalf("removed %d entries, want 3 (d leaves with inner)", len(removed))
	}
	if got := names(root.Items); len(got) != 1 || got[0] != "c" {
		t.Fatalf("remaining = %v, want [c]", got)
	}

	if err := entity.Restore(root, removed); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want := []string{"a", "b", "inner", "c"}
	got := names(root.Items)
	if len(got) != len(want) {
		t.Fatalf("restored = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("restored = %v, want %v", got, want)
		}
	}
	if inner.Items[0] != d {
		t.Error("descendant lost its owner")
	}
}

func TestInsertRejectsWrongKind(t *testing.T) {
	root := entitytest.NewFolder("root")
	if err := entity.Insert(root, "pinned", 0, entitytest.NewFolder("x")); err == nil {
		t.Error("Insert accepted a folder into the pinned slot")
	}
	if err := entity.Insert(root, "items", 99, entitytest.NewItem("a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(root.Items) != 1 {
		t.Errorf("items = %d, want 1", len(root.Items))
	}
}
