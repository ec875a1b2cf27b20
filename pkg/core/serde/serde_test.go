package serde_test

import (
	"testing"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/entity/entitytest"
	"github.com/matzehuels/modelgraph/pkg/core/serde"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// sample builds: root{a, b, inner{c}, edge(a->c), hyper([a,b]->[c])},
// with a.Peer = b and b.Peer = a.
func sample() (*entitytest.Folder, map[string]entity.Node) {
	a, b, c := entitytest.NewItem("a"), entitytest.NewItem("b"), entitytest.NewItem("c")
	a.Peer, b.Peer = b, a
	inner := entitytest.NewFolder("inner", c)
	edge := entitytest.NewEdge(a, c)
	hyper := entitytest.NewHyper([]entity.Node{a, b}, []entity.Node{c})
	root := entitytest.NewFolder("root", a, b, inner, edge, hyper)
	return root, map[string]entity.Node{
		"a": a, "b": b, "c": c, "inner": inner, "edge": edge, "hyper": hyper, "root": root,
	}
}

func TestRoundTrip(t *testing.T) {
	root, nodes := sample()

	rs, err := serde.Serialize(root)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if rs.Len() != len(nodes) {
		t.Fatalf("records = %d, want %d", rs.Len(), len(nodes))
	}

	d := serde.NewDeserializer(entitytest.Registry(), rs)
	got, err := serde.GetAs[*entitytest.Folder](d, root.ID())
	if err != nil {
		t.Fatalf("GetAs: %v", err)
	}
	if got == root {
		t.Fatal("deserializer returned the original node")
	}
	if got.ID() != root.ID() || got.Name != "root" || len(got.Items) != 5 {
		t.Fatalf("root = %v %q %d items", got.ID(), got.Name, len(got.Items))
	}

	again, err := serde.Serialize(got)
	if err != nil {
		t.Fatalf("Serialize again: %v", err)
	}
	for _, want := range rs.All() {
		rec, ok := again.Get(want.ID)
		if !ok {
			t.Fatalf("record %v lost in round trip", want.ID)
		}
		if rec.Kind != want.Kind || len(rec.Owned) != len(want.Owned) || len(rec.Refs) != len(want.Refs) {
			t.Errorf("record %v changed: %+v, want %+v", want.ID, rec, want)
		}
	}
}

func TestSharedReferencesResolveToOneNode(t *testing.T) {
	root, nodes := sample()
	rs, err := serde.Serialize(root)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	d := serde.NewDeserializer(entitytest.Registry(), rs)

	got, err := serde.GetAs[*entitytest.Folder](d, root.ID())
	if err != nil {
		t.Fatalf("GetAs: %v", err)
	}
	a := got.Items[0].(*entitytest.Item)
	edge := got.Items[3].(*entitytest.Edge)
	hyper := got.Items[4].(*entitytest.Hyper)
	inner := got.Items[2].(*entitytest.Folder)

	if edge.Source != entity.Node(a) || hyper.Sources[0] != entity.Node(a) {
		t.Error("references to a resolved to different nodes")
	}
	if edge.Target != inner.Items[0] || hyper.Targets[0] != inner.Items[0] {
		t.Error("references to c resolved to different nodes")
	}

	direct, err := d.Get(nodes["a"].ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if direct != entity.Node(a) {
		t.Error("Get after load returned a different node")
	}
}

func TestCycles(t *testing.T) {
	root, _ := sample()
	self := entitytest.NewItem("self")
	self.Peer = self
	root.Items = append(root.Items, self)

	rs, err := serde.Serialize(root)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	d := serde.NewDeserializer(entitytest.Registry(), rs)
	got, err := serde.GetAs[*entitytest.Folder](d, root.ID())
	if err != nil {
		t.Fatalf("GetAs: %v", err)
	}

	a := got.Items[0].(*entitytest.Item)
	b := got.Items[1].(*entitytest.Item)
	if a.Peer != b || b.Peer != a {
		t.Error("mutual references not restored")
	}
	s := got.Items[len(got.Items)-1].(*entitytest.Item)
	if s.Peer != s {
		t.Error("self reference not restored")
	}
}

func TestSerializeRecordsSorted(t *testing.T) {
	root, _ := sample()
	rs, err := serde.Serialize(root)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	all := rs.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID.Compare(all[i].ID) >= 0 {
			t.Fatalf("records not sorted at %d", i)
		}
	}
}

func TestSerializeIdempotentVisits(t *testing.T) {
	root, nodes := sample()
	s := serde.NewSerializer()
	for _, n := range []entity.Node{root, nodes["inner"], root} {
		if err := s.Visit(n); err != nil {
			t.Fatalf("Visit: %v", err)
		}
	}
	for name, n := range nodes {
		if !s.Contains(n.ID()) {
			t.Errorf("%s not emitted", name)
		}
	}
	if s.Contains(entity.New(entity.ModelSpace)) {
		t.Error("Contains reports an unknown identifier")
	}
	rs, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if rs.Len() != len(nodes) {
		t.Errorf("records = %d, want %d", rs.Len(), len(nodes))
	}
}

func TestSerializeErrors(t *testing.T) {
	t.Run("dangling reference", func(t *testing.T) {
		outside := entitytest.NewItem("outside")
		a := entitytest.NewItem("a")
		a.Peer = outside
		_, err := serde.Serialize(entitytest.NewFolder("root", a))
		if !errors.Is(err, errors.ErrCodeStructure) {
			t.Fatalf("error = %v, want STRUCTURE_ERROR", err)
		}
		if e := err.(*errors.Error); e.Field != "peer" || e.Entity != a.ID().String() {
			t.Errorf("location = %q %q", e.Entity, e.Field)
		}
	})

	t.Run("reference target emitted as extra root", func(t *testing.T) {
		outside := entitytest.NewItem("outside")
		a := entitytest.NewItem("a")
		a.Peer = outside
		if _, err := serde.Serialize(entitytest.NewFolder("root", a), outside); err != nil {
			t.Fatalf("Serialize: %v", err)
		}
	})

	t.Run("root owned by a later root", func(t *testing.T) {
		a := entitytest.NewFolder("a")
		b := entitytest.NewFolder("b", a)
		if _, err := serde.Serialize(a, b); !errors.Is(err, errors.ErrCodeStructure) {
			t.Fatalf("error = %v, want STRUCTURE_ERROR", err)
		}
	})

	t.Run("ownership cycle", func(t *testing.T) {
		a := entitytest.NewFolder("a")
		b := entitytest.NewFolder("b", a)
		a.Items = []entity.Node{b}
		if _, err := serde.Serialize(a); !errors.Is(err, errors.ErrCodeStructure) {
			t.Fatalf("error = %v, want STRUCTURE_ERROR", err)
		}
	})

	t.Run("child listed twice", func(t *testing.T) {
		x := entitytest.NewItem("x")
		if _, err := serde.Serialize(entitytest.NewFolder("root", x, x)); !errors.Is(err, errors.ErrCodeStructure) {
			t.Fatalf("error = %v, want STRUCTURE_ERROR", err)
		}
	})

	t.Run("two owners", func(t *testing.T) {
		shared := entitytest.NewItem("shared")
		root := entitytest.NewFolder("root",
			entitytest.NewFolder("x", shared),
			entitytest.NewFolder("y", shared))
		if _, err := serde.Serialize(root); !errors.Is(err, errors.ErrCodeStructure) {
			t.Fatalf("error = %v, want STRUCTURE_ERROR", err)
		}
	})
}

func TestDeserializeErrors(t *testing.T) {
	reg := entitytest.Registry()

	folderID := entity.New(entity.ModelSpace)
	itemID := entity.New(entity.ModelSpace)
	missingID := entity.New(entity.ModelSpace)
	subA := entity.New(entity.ModelSpace)
	subB := entity.New(entity.ModelSpace)

	tests := []struct {
		name    string
		records []serde.Record
		code    errors.Code
		field   string
	}{
		{
			name: "unknown child",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "f"},
					Owned: map[string][]entity.ID{"items": {missingID}}},
			},
			code:  errors.ErrCodeUnknownIdentifier,
			field: "items",
		},
		{
			name: "missing attribute",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{}},
			},
			code:  errors.ErrCodeStructure,
			field: "name",
		},
		{
			name: "wrong target kind",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "f"},
					Owned: map[string][]entity.ID{"pinned": {itemID}}},
				{ID: itemID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "g"}},
			},
			code:  errors.ErrCodeStructure,
			field: "pinned",
		},
		{
			name: "unknown kind",
			records: []serde.Record{
				{ID: folderID, Kind: "test.nope"},
			},
			code: errors.ErrCodeStructure,
		},
		{
			name: "shared owner",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "root"},
					Owned: map[string][]entity.ID{"items": {subA, subB}}},
				{ID: subA, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "a"},
					Owned: map[string][]entity.ID{"items": {itemID}}},
				{ID: subB, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "b"},
					Owned: map[string][]entity.ID{"items": {itemID}}},
				{ID: itemID, Kind: entitytest.KindItem, Attrs: entity.Attrs{"name": "x"}},
			},
			code:  errors.ErrCodeStructure,
			field: "items",
		},
		{
			name: "child listed twice",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "root"},
					Owned: map[string][]entity.ID{"items": {itemID, itemID}}},
				{ID: itemID, Kind: entitytest.KindItem, Attrs: entity.Attrs{"name": "x"}},
			},
			code:  errors.ErrCodeStructure,
			field: "items",
		},
		{
			name: "owns itself",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "root"},
					Owned: map[string][]entity.ID{"items": {folderID}}},
			},
			code:  errors.ErrCodeStructure,
			field: "items",
		},
		{
			name: "ownership cycle",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "root"},
					Owned: map[string][]entity.ID{"items": {subA}}},
				{ID: subA, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "a"},
					Owned: map[string][]entity.ID{"items": {folderID}}},
			},
			code:  errors.ErrCodeStructure,
			field: "items",
		},
		{
			name: "cycle below the root",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "root"},
					Owned: map[string][]entity.ID{"items": {subA}}},
				{ID: subA, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "a"},
					Owned: map[string][]entity.ID{"items": {itemID, subB}}},
				{ID: subB, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "b"},
					Owned: map[string][]entity.ID{"items": {subA}}},
				{ID: itemID, Kind: entitytest.KindItem, Attrs: entity.Attrs{"name": "x"}},
			},
			code:  errors.ErrCodeStructure,
			field: "items",
		},
		{
			name: "undeclared field",
			records: []serde.Record{
				{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "f"},
					Refs: map[string][]entity.ID{"peer": {folderID}}},
			},
			code: errors.ErrCodeStructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := serde.NewRecordSet(tt.records)
			if err != nil {
				t.Fatalf("NewRecordSet: %v", err)
			}
			d := serde.NewDeserializer(reg, rs)
			_, err = d.Get(folderID)
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if tt.field != "" {
				if e := err.(*errors.Error); e.Field != tt.field {
					t.Errorf("Field = %q, want %q", e.Field, tt.field)
				}
			}
		})
	}
}

func TestDeserializerPoisoned(t *testing.T) {
	goodID := entity.New(entity.ModelSpace)
	badID := entity.New(entity.ModelSpace)
	rs, err := serde.NewRecordSet([]serde.Record{
		{ID: goodID, Kind: entitytest.KindItem, Attrs: entity.Attrs{"name": "ok"}},
		{ID: badID, Kind: entitytest.KindItem, Attrs: entity.Attrs{"name": 7}},
	})
	if err != nil {
		t.Fatalf("NewRecordSet: %v", err)
	}

	d := serde.NewDeserializer(entitytest.Registry(), rs)
	if _, err := d.Get(goodID); err != nil {
		t.Fatalf("Get(good): %v", err)
	}
	_, first := d.Get(badID)
	if first == nil {
		t.Fatal("Get(bad) succeeded")
	}
	if _, err := d.Get(goodID); err != first {
		t.Errorf("poisoned Get = %v, want first error", err)
	}
}

func TestGetAsUnexpectedType(t *testing.T) {
	root, nodes := sample()
	rs, err := serde.Serialize(root)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	d := serde.NewDeserializer(entitytest.Registry(), rs)
	if _, err := serde.GetAs[*entitytest.Folder](d, nodes["a"].ID()); !errors.Is(err, errors.ErrCodeStructure) {
		t.Errorf("error = %v, want STRUCTURE_ERROR", err)
	}
}

func TestDuplicateRecords(t *testing.T) {
	id := entity.New(entity.ModelSpace)
	_, err := serde.NewRecordSet([]serde.Record{
		{ID: id, Kind: entitytest.KindItem},
		{ID: id, Kind: entitytest.KindItem},
	})
	if !errors.Is(err, errors.ErrCodeStructure) {
		t.Errorf("error = %v, want STRUCTURE_ERROR", err)
	}
}

func TestUnreached(t *testing.T) {
	root, _ := sample()
	stray := entitytest.NewItem("stray")
	rs, err := serde.Serialize(root, stray)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	d := serde.NewDeserializer(entitytest.Registry(), rs)
	if _, err := d.Get(root.ID()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	un := d.Unreached()
	if len(un) != 1 || un[0] != stray.ID() {
		t.Errorf("Unreached = %v, want [%v]", un, stray.ID())
	}
}

func TestDeserializerOwnerAndIgnored(t *testing.T) {
	folderID := entity.New(entity.ModelSpace)
	itemID := entity.New(entity.ModelSpace)
	rs, err := serde.NewRecordSet([]serde.Record{
		{ID: folderID, Kind: entitytest.KindFolder, Attrs: entity.Attrs{"name": "f", "colour": "red"},
			Owned: map[string][]entity.ID{"items": {itemID}}},
		{ID: itemID, Kind: entitytest.KindItem, Attrs: entity.Attrs{"name": "x"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	d := serde.NewDeserializer(entitytest.Registry(), rs)
	if _, err := d.Get(folderID); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if owner, ok := d.Owner(itemID); !ok || owner != folderID {
		t.Errorf("Owner(item) = %v, %v", owner, ok)
	}
	if _, ok := d.Owner(folderID); ok {
		t.Error("root has an owner")
	}

	ignored := d.Ignored()
	if len(ignored) != 1 || ignored[0].ID != folderID || ignored[0].Key != "colour" {
		t.Errorf("Ignored() = %+v", ignored)
	}
}
