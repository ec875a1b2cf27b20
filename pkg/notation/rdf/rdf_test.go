package rdf_test

import (
	"fmt"
	"testing"

	"github.com/matzehuels/modelgraph/pkg/core/closure"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/serde"
	"github.com/matzehuels/modelgraph/pkg/notation/rdf"
)

func registry() *entity.Registry {
	r := entity.NewRegistry()
	rdf.Register(r)
	return r
}

func TestPredicateObjectsResolve(t *testing.T) {
	d := rdf.NewDiagram("People")
	alice := rdf.NewNode("http://example.org/alice")
	name := rdf.NewLiteral("Alice")
	knows := rdf.NewNode("http://example.org/bob")
	g := rdf.NewGraph("http://example.org/g")
	g.Add(knows)
	g.Add(rdf.NewPredicate("http://xmlns.com/foaf/0.1/knows", alice, knows))
	d.Add(alice)
	d.Add(name)
	d.Add(rdf.NewPredicate("http://xmlns.com/foaf/0.1/name", alice, name))
	d.Add(g)

	rs, err := serde.Serialize(d)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := serde.GetAs[*rdf.Diagram](serde.NewDeserializer(registry(), rs), d.ID())
	if err != nil {
		t.Fatalf("GetAs: %v", err)
	}
	p := got.Elements[2].(*rdf.Predicate)
	if p.Source != got.Elements[0] || p.Target != got.Elements[1] {
		t.Error("predicate endpoints did not resolve to the diagram's terms")
	}
	nested := got.Elements[3].(*rdf.Graph)
	if nested.Elements[1].(*rdf.Predicate).Target != nested.Elements[0] {
		t.Error("predicate inside graph did not resolve")
	}

	del := closure.Compute(registry(), []entity.Node{got}, entity.NewSet(got.Elements[0].ID()))
	if len(del) != 3 {
		t.Errorf("deleting the subject removed %d ids, want 3", len(del))
	}
}

func ExampleDiagram_NQuads() {
	d := rdf.NewDiagram("People")
	alice := rdf.NewNode("http://example.org/alice")
	name := rdf.NewLiteral("Alice")
	name.Langtag = "en"
	d.Add(alice)
	d.Add(name)
	d.Add(rdf.NewPredicate("http://xmlns.com/foaf/0.1/name", alice, name))

	fmt.Print(d.NQuads())
	// Output:
	// <http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice"@en .
}
