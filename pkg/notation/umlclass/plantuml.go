package umlclass

import (
	"fmt"
	"strings"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
)

// PlantUML renders the diagram as PlantUML class diagram source. Packages
// become nested package blocks; relationships refer to classifiers by their
// package-qualified names.
func (d *Diagram) PlantUML() string {
	d.RLock()
	elements := append([]Element(nil), d.Elements...)
	d.RUnlock()

	p := &plantUML{paths: make(map[entity.ID]string)}
	p.collect(elements, nil)

	p.b.WriteString("@startuml\n")
	p.emit(elements)
	p.b.WriteString("@enduml\n")
	return p.b.String()
}

type plantUML struct {
	paths map[entity.ID]string
	b     strings.Builder
}

func qualified(stack []string, name string) string {
	if len(stack) == 0 {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%q", strings.Join(stack, ".")+"."+name)
}

func (p *plantUML) collect(elements []Element, stack []string) {
	for _, e := range elements {
		e.RLock()
		switch e := e.(type) {
		case *Package:
			nested := append([]Element(nil), e.Elements...)
			name := e.Name
			e.RUnlock()
			p.collect(nested, append(stack, name))
			continue
		case *Class:
			p.paths[e.ID()] = qualified(stack, e.Name)
		case *Instance:
			p.paths[e.ID()] = qualified(stack, e.InstanceType)
		}
		e.RUnlock()
	}
}

func (p *plantUML) emit(elements []Element) {
	for _, e := range elements {
		e.RLock()
		switch e := e.(type) {
		case *Package:
			nested := append([]Element(nil), e.Elements...)
			fmt.Fprintf(&p.b, "package %q {\n", e.Name)
			e.RUnlock()
			p.emit(nested)
			p.b.WriteString("}\n")
			continue
		case *Class:
			fmt.Fprintf(&p.b, "class %q ", e.Name)
			if e.Stereotype != "" {
				fmt.Fprintf(&p.b, "<<%s>> ", e.Stereotype)
			}
			p.b.WriteString("{\n")
			for _, part := range []string{e.Properties, e.Functions} {
				if part != "" {
					p.b.WriteString(part)
					p.b.WriteString("\n")
				}
			}
			p.b.WriteString("}\n")
		case *Instance:
			label := ":" + e.InstanceType
			if e.InstanceName != "" {
				label = e.InstanceName + ": " + e.InstanceType
			}
			fmt.Fprintf(&p.b, "object %q\n", label)
		case *Generalization:
			for _, s := range e.Sources {
				for _, t := range e.Targets {
					p.edge(s, " --|> ", t, "")
				}
			}
		case *Dependency:
			p.edge(e.Source, " ..> ", e.Target, e.Stereotype)
		case *Association:
			arrow := fmt.Sprintf(" %s-%s ",
				associationHead(false, e.SourceEnd), associationHead(true, e.TargetEnd))
			if e.SourceEnd.Multiplicity != "" {
				arrow = fmt.Sprintf(" %q", e.SourceEnd.Multiplicity) + arrow
			}
			if e.TargetEnd.Multiplicity != "" {
				arrow += fmt.Sprintf("%q ", e.TargetEnd.Multiplicity)
			}
			p.edge(e.Source, arrow, e.Target, e.Stereotype)
		}
		e.RUnlock()
	}
}

func (p *plantUML) edge(source entity.Node, arrow string, target entity.Node, stereotype string) {
	if source == nil || target == nil {
		return
	}
	s, okS := p.paths[source.ID()]
	t, okT := p.paths[target.ID()]
	if !okS || !okT {
		// Endpoint outside this diagram.
		return
	}
	p.b.WriteString(s)
	p.b.WriteString(arrow)
	p.b.WriteString(t)
	if stereotype != "" {
		fmt.Fprintf(&p.b, ": <<%s>>", stereotype)
	}
	p.b.WriteString("\n")
}

func associationHead(target bool, end AssociationEnd) string {
	switch end.Aggregation {
	case AggregationShared:
		return "o"
	case AggregationComposite:
		return "*"
	}
	switch end.Navigability {
	case NavigabilityNonNavigable:
		return "x"
	case NavigabilityNavigable:
		if target {
			return ">"
		}
		return "<"
	}
	return ""
}
