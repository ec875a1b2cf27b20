// Package entitytest provides a small notation for testing the generic
// engines: folders own items, edges and hyperedges link items.
package entitytest

import (
	"slices"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Kind tags.
const (
	KindFolder entity.Kind = "test.folder"
	KindItem   entity.Kind = "test.item"
	KindEdge   entity.Kind = "test.edge"
	KindHyper  entity.Kind = "test.hyper"
)

// Registry returns a registry holding the test kinds.
func Registry() *entity.Registry {
	r := entity.NewRegistry()
	r.Register(
		entity.KindSpec{Kind: KindFolder, Space: entity.ModelSpace, New: func(id entity.ID) entity.Node { return newFolder(id) }},
		entity.KindSpec{Kind: KindItem, Space: entity.ModelSpace, New: func(id entity.ID) entity.Node { return newItem(id) }},
		entity.KindSpec{
			Kind: KindEdge, Space: entity.ModelSpace,
			New:    func(id entity.ID) entity.Node { return newEdge(id) },
			Orphan: entity.AnyRef("source", "target"),
		},
		entity.KindSpec{
			Kind: KindHyper, Space: entity.ModelSpace,
			New:    func(id entity.ID) entity.Node { return newHyper(id) },
			Orphan: entity.Either(entity.AllRefs("sources"), entity.AllRefs("targets")),
		},
	)
	return r
}

// Folder owns any test node in "items" and optionally one item in "pinned".
type Folder struct {
	entity.Base
	Name   string
	Items  []entity.Node
	Pinned *Item
}

func newFolder(id entity.ID) *Folder {
	f := &Folder{}
	f.Init(id)
	return f
}

// NewFolder returns a folder owning items.
func NewFolder(name string, items ...entity.Node) *Folder {
	f := newFolder(entity.New(entity.ModelSpace))
	f.Name = name
	f.Items = items
	return f
}

func (f *Folder) Kind() entity.Kind   { return KindFolder }
func (f *Folder) Attrs() entity.Attrs { return entity.Attrs{"name": f.Name} }
func (f *Folder) Slots() []entity.Field {
	return []entity.Field{{Name: "items", Many: true}, {Name: "pinned"}}
}

func (f *Folder) SetAttrs(a entity.Attrs) error {
	name, err := a.String("name")
	f.Name = name
	return err
}

func (f *Folder) Children(slot string) []entity.Node {
	switch slot {
	case "items":
		return f.Items
	case "pinned":
		if f.Pinned == nil {
			return nil
		}
		return []entity.Node{f.Pinned}
	}
	return nil
}

func (f *Folder) SetChildren(slot string, children []entity.Node) error {
	switch slot {
	case "items":
		f.Items = slices.Clone(children)
		return nil
	case "pinned":
		if len(children) == 0 {
			f.Pinned = nil
			return nil
		}
		it, ok := children[0].(*Item)
		if !ok || len(children) > 1 {
			return errors.Structure("element has unexpected type").InField(slot)
		}
		f.Pinned = it
		return nil
	}
	return errors.Structure("unknown slot %q", slot).InField(slot)
}

// Item is a leaf with an optional reference to a peer item.
type Item struct {
	entity.Base
	Name string
	Peer *Item
}

func newItem(id entity.ID) *Item {
	it := &Item{}
	it.Init(id)
	return it
}

// NewItem returns a named item.
func NewItem(name string) *Item {
	it := newItem(entity.New(entity.ModelSpace))
	it.Name = name
	return it
}

func (it *Item) Kind() entity.Kind         { return KindItem }
func (it *Item) Attrs() entity.Attrs       { return entity.Attrs{"name": it.Name} }
func (it *Item) RefFields() []entity.Field { return []entity.Field{{Name: "peer"}} }

func (it *Item) SetAttrs(a entity.Attrs) error {
	name, err := a.String("name")
	it.Name = name
	return err
}

func (it *Item) Refs(field string) []entity.Node {
	if field == "peer" && it.Peer != nil {
		return []entity.Node{it.Peer}
	}
	return nil
}

func (it *Item) SetRefs(field string, targets []entity.Node) error {
	if field != "peer" {
		return errors.Structure("unknown field %q", field).InField(field)
	}
	if len(targets) == 0 {
		it.Peer = nil
		return nil
	}
	p, ok := targets[0].(*Item)
	if !ok {
		return errors.Structure("element has unexpected type").InField(field)
	}
	it.Peer = p
	return nil
}

// Edge links two nodes and is orphaned when either endpoint is deleted.
type Edge struct {
	entity.Base
	Source entity.Node
	Target entity.Node
}

func newEdge(id entity.ID) *Edge {
	e := &Edge{}
	e.Init(id)
	return e
}

// NewEdge returns an edge from source to target.
func NewEdge(source, target entity.Node) *Edge {
	e := newEdge(entity.New(entity.ModelSpace))
	e.Source, e.Target = source, target
	return e
}

func (e *Edge) Kind() entity.Kind           { return KindEdge }
func (e *Edge) Attrs() entity.Attrs         { return entity.Attrs{} }
func (e *Edge) SetAttrs(entity.Attrs) error { return nil }
func (e *Edge) RefFields() []entity.Field   { return []entity.Field{{Name: "source"}, {Name: "target"}} }

func (e *Edge) Refs(field string) []entity.Node {
	switch field {
	case "source":
		return entity.One(e.Source)
	case "target":
		return entity.One(e.Target)
	}
	return nil
}

func (e *Edge) SetRefs(field string, targets []entity.Node) error {
	if len(targets) != 1 {
		return errors.Structure("expected exactly one target").InField(field)
	}
	switch field {
	case "source":
		e.Source = targets[0]
	case "target":
		e.Target = targets[0]
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}

// Hyper links lists of nodes and is orphaned when all sources or all
// targets are deleted.
type Hyper struct {
	entity.Base
	Sources []entity.Node
	Targets []entity.Node
}

// NewHyper returns a hyperedge.
func NewHyper(sources, targets []entity.Node) *Hyper {
	h := newHyper(entity.New(entity.ModelSpace))
	h.Sources, h.Targets = sources, targets
	return h
}

func newHyper(id entity.ID) *Hyper {
	h := &Hyper{}
	h.Init(id)
	return h
}

func (h *Hyper) Kind() entity.Kind           { return KindHyper }
func (h *Hyper) Attrs() entity.Attrs         { return entity.Attrs{} }
func (h *Hyper) SetAttrs(entity.Attrs) error { return nil }
func (h *Hyper) RefFields() []entity.Field {
	return []entity.Field{{Name: "sources", Many: true}, {Name: "targets", Many: true}}
}

func (h *Hyper) Refs(field string) []entity.Node {
	switch field {
	case "sources":
		return h.Sources
	case "targets":
		return h.Targets
	}
	return nil
}

func (h *Hyper) SetRefs(field string, targets []entity.Node) error {
	switch field {
	case "sources":
		h.Sources = slices.Clone(targets)
	case "targets":
		h.Targets = slices.Clone(targets)
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}
