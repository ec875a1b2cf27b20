package entity

import "sync"

// Kind is the type tag stored in every record, e.g. "umlclass.class".
type Kind string

// Node is an element of a document graph.
//
// Attrs returns a fresh map each call; SetAttrs validates and applies
// attributes read from a record. Neither method locks.
type Node interface {
	RLock()
	RUnlock()
	Lock()
	Unlock()

	ID() ID
	Kind() Kind
	Attrs() Attrs
	SetAttrs(Attrs) error
}

// Field describes an owned-children slot or a reference field.
// Single-valued fields (Many == false) hold zero or one node.
type Field struct {
	Name string
	Many bool
}

// Container is a node that owns children. Children are addressed by slot
// name and position. SetChildren rejects children of the wrong kind.
type Container interface {
	Node
	Slots() []Field
	Children(slot string) []Node
	SetChildren(slot string, children []Node) error
}

// Linker is a node holding non-owning references to other nodes.
// SetRefs rejects targets of the wrong kind.
type Linker interface {
	Node
	RefFields() []Field
	Refs(field string) []Node
	SetRefs(field string, targets []Node) error
}

// Base is embedded by every node type. It carries the identifier and the
// node's lock.
type Base struct {
	sync.RWMutex
	id ID
}

// Init sets the identifier. It is called once by constructors, before the
// node is reachable from anywhere else.
func (b *Base) Init(id ID) { b.id = id }

// ID returns the node's identifier. IDs never change, so no lock is needed.
func (b *Base) ID() ID { return b.id }

// One wraps an optional single node as a slice. A nil pointer or nil
// interface yields an empty slice.
func One[T interface {
	comparable
	Node
}](n T) []Node {
	var zero T
	if n == zero {
		return nil
	}
	return []Node{n}
}
