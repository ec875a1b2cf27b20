// Package rdf implements RDF graph diagram models.
//
// Nodes and literals are terms; predicates link a subject node to an object
// term. Named graphs own terms and predicates and may nest.
package rdf

import (
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Name is the notation name used as view type.
const Name = "rdf"

// Kind tags.
const (
	KindDiagram   entity.Kind = "rdf.diagram"
	KindGraph     entity.Kind = "rdf.graph"
	KindNode      entity.Kind = "rdf.node"
	KindLiteral   entity.Kind = "rdf.literal"
	KindPredicate entity.Kind = "rdf.predicate"
)

const slotElements = "contained_elements"

// Element is any kind a diagram or graph may own.
type Element interface {
	entity.Node
	rdfElement()
}

// Term is a valid predicate object: a node or a literal.
type Term interface {
	Element
	term()
}

type elements struct {
	Elements []Element
}

func (e *elements) Slots() []entity.Field {
	return []entity.Field{{Name: slotElements, Many: true}}
}

func (e *elements) Children(slot string) []entity.Node {
	if slot != slotElements {
		return nil
	}
	return entity.Nodes(e.Elements)
}

func (e *elements) SetChildren(slot string, children []entity.Node) error {
	if slot != slotElements {
		return errors.Structure("unknown slot %q", slot).InField(slot)
	}
	es, err := entity.List[Element](slot, children)
	if err != nil {
		return err
	}
	e.Elements = es
	return nil
}

// Add appends el. The caller holds the write lock.
func (e *elements) Add(el Element) { e.Elements = append(e.Elements, el) }

// Diagram is the model root of an RDF diagram.
type Diagram struct {
	entity.Base
	elements
	Name    string
	Comment string
}

// NewDiagram returns an empty diagram.
func NewDiagram(name string) *Diagram {
	d := &Diagram{Name: name}
	d.Init(entity.NewModelID().ID())
	return d
}

func (d *Diagram) Kind() entity.Kind { return KindDiagram }

func (d *Diagram) Attrs() entity.Attrs {
	return entity.Attrs{"name": d.Name, "comment": d.Comment}
}

func (d *Diagram) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	d.Name = r.String("name")
	d.Comment = r.OptString("comment")
	return r.Err()
}

// Graph is a named graph.
type Graph struct {
	entity.Base
	elements
	IRI     string
	Comment string
}

// NewGraph returns an empty named graph.
func NewGraph(iri string) *Graph {
	g := &Graph{IRI: iri}
	g.Init(entity.NewModelID().ID())
	return g
}

func (g *Graph) Kind() entity.Kind { return KindGraph }
func (g *Graph) rdfElement()       {}

func (g *Graph) Attrs() entity.Attrs {
	return entity.Attrs{"iri": g.IRI, "comment": g.Comment}
}

func (g *Graph) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	g.IRI = r.String("iri")
	g.Comment = r.OptString("comment")
	return r.Err()
}

// Node is an IRI resource.
type Node struct {
	entity.Base
	IRI     string
	Comment string
}

// NewNode returns a resource.
func NewNode(iri string) *Node {
	n := &Node{IRI: iri}
	n.Init(entity.NewModelID().ID())
	return n
}

func (n *Node) Kind() entity.Kind { return KindNode }
func (n *Node) rdfElement()       {}
func (n *Node) term()             {}

func (n *Node) Attrs() entity.Attrs {
	return entity.Attrs{"iri": n.IRI, "comment": n.Comment}
}

func (n *Node) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	n.IRI = r.String("iri")
	n.Comment = r.OptString("comment")
	return r.Err()
}

// Literal is a typed or language-tagged value.
type Literal struct {
	entity.Base
	Content  string
	Datatype string
	Langtag  string
	Comment  string
}

// NewLiteral returns a plain literal.
func NewLiteral(content string) *Literal {
	l := &Literal{Content: content}
	l.Init(entity.NewModelID().ID())
	return l
}

func (l *Literal) Kind() entity.Kind { return KindLiteral }
func (l *Literal) rdfElement()       {}
func (l *Literal) term()             {}

func (l *Literal) Attrs() entity.Attrs {
	return entity.Attrs{
		"content":  l.Content,
		"datatype": l.Datatype,
		"langtag":  l.Langtag,
		"comment":  l.Comment,
	}
}

func (l *Literal) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	l.Content = r.OptString("content")
	l.Datatype = r.OptString("datatype")
	l.Langtag = r.OptString("langtag")
	l.Comment = r.OptString("comment")
	return r.Err()
}

// Predicate states that Source relates to Target through IRI.
type Predicate struct {
	entity.Base
	IRI     string
	Source  *Node
	Target  Term
	Comment string
}

// NewPredicate returns a predicate.
func NewPredicate(iri string, source *Node, target Term) *Predicate {
	p := &Predicate{IRI: iri, Source: source, Target: target}
	p.Init(entity.NewModelID().ID())
	return p
}

func (p *Predicate) Kind() entity.Kind { return KindPredicate }
func (p *Predicate) rdfElement()       {}

func (p *Predicate) Attrs() entity.Attrs {
	return entity.Attrs{"iri": p.IRI, "comment": p.Comment}
}

func (p *Predicate) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	p.IRI = r.String("iri")
	p.Comment = r.OptString("comment")
	return r.Err()
}

func (p *Predicate) RefFields() []entity.Field {
	return []entity.Field{{Name: "source"}, {Name: "target"}}
}

func (p *Predicate) Refs(field string) []entity.Node {
	switch field {
	case "source":
		return entity.One(p.Source)
	case "target":
		return entity.One(p.Target)
	}
	return nil
}

func (p *Predicate) SetRefs(field string, targets []entity.Node) error {
	switch field {
	case "source":
		n, err := entity.Single[*Node](field, targets)
		if err != nil {
			return err
		}
		p.Source = n
	case "target":
		t, err := entity.Single[Term](field, targets)
		if err != nil {
			return err
		}
		p.Target = t
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}

// Register adds the RDF kinds to r.
func Register(r *entity.Registry) {
	spec := func(k entity.Kind, alloc func() entity.Node, orphan entity.OrphanRule) entity.KindSpec {
		return entity.KindSpec{
			Kind:  k,
			Space: entity.ModelSpace,
			New: func(id entity.ID) entity.Node {
				n := alloc()
				n.(interface{ Init(entity.ID) }).Init(id)
				return n
			},
			Orphan: orphan,
		}
	}
	r.Register(
		spec(KindDiagram, func() entity.Node { return &Diagram{} }, nil),
		spec(KindGraph, func() entity.Node { return &Graph{} }, nil),
		spec(KindNode, func() entity.Node { return &Node{} }, nil),
		spec(KindLiteral, func() entity.Node { return &Literal{} }, nil),
		spec(KindPredicate, func() entity.Node { return &Predicate{} }, entity.AnyRef("source", "target")),
	)
}
