package rdf

import (
	"fmt"
	"strings"
)

// NQuads renders every predicate in the diagram as an N-Quads statement.
// Predicates inside a named graph carry the graph IRI as fourth term.
func (d *Diagram) NQuads() string {
	d.RLock()
	top := append([]Element(nil), d.Elements...)
	d.RUnlock()

	var b strings.Builder
	writeQuads(&b, top, "")
	return b.String()
}

func writeQuads(b *strings.Builder, elements []Element, graph string) {
	for _, e := range elements {
		switch e := e.(type) {
		case *Graph:
			e.RLock()
			nested := append([]Element(nil), e.Elements...)
			iri := e.IRI
			e.RUnlock()
			writeQuads(b, nested, iri)
		case *Predicate:
			e.RLock()
			subject, object, iri := e.Source, e.Target, e.IRI
			e.RUnlock()
			if subject == nil || object == nil {
				continue
			}
			fmt.Fprintf(b, "%s <%s> %s", nodeTerm(subject), iri, objectTerm(object))
			if graph != "" {
				fmt.Fprintf(b, " <%s>", graph)
			}
			b.WriteString(" .\n")
		}
	}
}

func nodeTerm(n *Node) string {
	n.RLock()
	defer n.RUnlock()
	return "<" + n.IRI + ">"
}

func objectTerm(t Term) string {
	switch t := t.(type) {
	case *Node:
		return nodeTerm(t)
	case *Literal:
		t.RLock()
		defer t.RUnlock()
		s := fmt.Sprintf("%q", t.Content)
		switch {
		case t.Langtag != "":
			s += "@" + t.Langtag
		case t.Datatype != "":
			s += "^^<" + t.Datatype + ">"
		}
		return s
	}
	return ""
}
