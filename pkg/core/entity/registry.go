package entity

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// OrphanRule reports whether a linking node must be deleted because the
// nodes it references are being deleted. The caller holds n's read lock.
type OrphanRule func(n Linker, deleting Set) bool

// KindSpec is one row of the kind dispatch table.
type KindSpec struct {
	Kind  Kind
	Space Space

	// New allocates an empty node with the given identifier. Attributes,
	// children and references are applied afterwards.
	New func(id ID) Node

	// Orphan is evaluated by cascading deletion. Nil means the kind is never
	// deleted because of what it references.
	Orphan OrphanRule
}

// Registry is the closed set of kinds a document may contain.
// A Registry is populated at program start and read-only afterwards.
type Registry struct {
	kinds map[Kind]KindSpec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[Kind]KindSpec)}
}

// Register adds kinds to the table. It panics on duplicate or incomplete
// specs, which are programming errors.
func (r *Registry) Register(specs ...KindSpec) {
	for _, s := range specs {
		if s.Kind == "" || s.New == nil || s.Space == 0 {
			panic(fmt.Sprintf("entity: incomplete kind spec %q", s.Kind))
		}
		if _, dup := r.kinds[s.Kind]; dup {
			panic(fmt.Sprintf("entity: kind %q registered twice", s.Kind))
		}
		r.kinds[s.Kind] = s
	}
}

// Lookup returns the KindSpec registered for k.
func (r *Registry) Lookup(k Kind) (KindSpec, bool) {
	s, ok := r.kinds[k]
	return s, ok
}

// Kinds returns all registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	return slices.Sorted(maps.Keys(r.kinds))
}

// New allocates an empty node of kind k. The identifier must belong to the
// kind's space.
func (r *Registry) New(k Kind, id ID) (Node, error) {
	s, ok := r.kinds[k]
	if !ok {
		return nil, errors.Structure("unknown kind %q", string(k)).At(id.String(), string(k))
	}
	if id.Space() != s.Space {
		return nil, errors.Structure("kind %q lives in %s space, got %s identifier",
			string(k), s.Space, id.Space()).At(id.String(), string(k))
	}
	return s.New(id), nil
}

// Orphaned evaluates the orphan rule of n's kind. The caller holds n's read
// lock.
func (r *Registry) Orphaned(n Node, deleting Set) bool {
	s, ok := r.kinds[n.Kind()]
	if !ok || s.Orphan == nil {
		return false
	}
	l, ok := n.(Linker)
	if !ok {
		return false
	}
	return s.Orphan(l, deleting)
}

// AnyRef orphans a node as soon as any target in any of fields is deleted.
// Binary relationships use this rule for their endpoints.
func AnyRef(fields ...string) OrphanRule {
	return func(n Linker, deleting Set) bool {
		for _, f := range fields {
			for _, t := range n.Refs(f) {
				if deleting.Has(t.ID()) {
					return true
				}
			}
		}
		return false
	}
}

// AllRefs orphans a node when field is non-empty and every target in it is
// deleted. N-ary relationships use this rule for each endpoint list.
func AllRefs(field string) OrphanRule {
	return func(n Linker, deleting Set) bool {
		targets := n.Refs(field)
		if len(targets) == 0 {
			return false
		}
		for _, t := range targets {
			if !deleting.Has(t.ID()) {
				return false
			}
		}
		return true
	}
}

// Either orphans a node when any of rules does.
func Either(rules ...OrphanRule) OrphanRule {
	return func(n Linker, deleting Set) bool {
		for _, rule := range rules {
			if rule(n, deleting) {
				return true
			}
		}
		return false
	}
}
