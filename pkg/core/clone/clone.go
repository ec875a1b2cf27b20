package clone

import (
	"maps"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Mapping maps original identifiers to the nodes that replace them.
type Mapping map[entity.ID]entity.Node

// Option configures a Copier.
type Option func(*Copier)

// WithMapping seeds the copier with entries from an earlier copy. Seeded
// entries take part in relinking but are never relinked themselves.
func WithMapping(m Mapping) Option {
	return func(c *Copier) {
		maps.Copy(c.mapping, m)
	}
}

// Copier performs one deep copy. It is scoped to a single operation and is
// not safe for concurrent use.
type Copier struct {
	reg     *entity.Registry
	mapping Mapping
	created []entity.Node
}

// New returns a copier resolving kinds through reg.
func New(reg *entity.Registry, opts ...Option) *Copier {
	c := &Copier{reg: reg, mapping: make(Mapping)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeepCopy copies root and everything it owns, relinks internal references
// and returns the copy along with the old-to-new mapping.
func DeepCopy(reg *entity.Registry, root entity.Node, opts ...Option) (entity.Node, Mapping, error) {
	c := New(reg, opts...)
	copies, err := c.Copy(root)
	if err != nil {
		return nil, nil, err
	}
	return copies[0], c.Mapping(), nil
}

// Copy walks every root, then relinks. Copies are returned in root order.
func (c *Copier) Copy(roots ...entity.Node) ([]entity.Node, error) {
	copies := make([]entity.Node, 0, len(roots))
	for _, r := range roots {
		cp, err := c.Walk(r)
		if err != nil {
			return nil, err
		}
		copies = append(copies, cp)
	}
	if err := c.Relink(); err != nil {
		return nil, err
	}
	return copies, nil
}

// Mapping returns the old-to-new mapping accumulated so far, seeded entries
// included.
func (c *Copier) Mapping() Mapping {
	return maps.Clone(c.mapping)
}

type slotChildren struct {
	slot  string
	nodes []entity.Node
}

type fieldTargets struct {
	field   string
	targets []entity.Node
}

// Walk copies orig and its owned descendants with fresh identifiers.
// References are copied unchanged; call [Copier.Relink] afterwards.
func (c *Copier) Walk(orig entity.Node) (entity.Node, error) {
	orig.RLock()
	kind := orig.Kind()
	attrs := orig.Attrs().Clone()
	var owned []slotChildren
	if ct, ok := orig.(entity.Container); ok {
		for _, s := range ct.Slots() {
			owned = append(owned, slotChildren{s.Name, append([]entity.Node(nil), ct.Children(s.Name)...)})
		}
	}
	var refs []fieldTargets
	if l, ok := orig.(entity.Linker); ok {
		for _, f := range l.RefFields() {
			refs = append(refs, fieldTargets{f.Name, append([]entity.Node(nil), l.Refs(f.Name)...)})
		}
	}
	orig.RUnlock()

	cp, err := c.reg.New(kind, entity.New(orig.ID().Space()))
	if err != nil {
		return nil, err
	}
	locate := func(err error, field string) error {
		return errors.Locate(err, orig.ID().String(), string(kind), field)
	}

	cp.Lock()
	err = cp.SetAttrs(attrs)
	if err == nil {
		if l, ok := cp.(entity.Linker); ok {
			for _, r := range refs {
				if err = l.SetRefs(r.field, r.targets); err != nil {
					err = locate(err, r.field)
					break
				}
			}
		}
	} else {
		err = locate(err, "")
	}
	cp.Unlock()
	if err != nil {
		return nil, err
	}

	c.mapping[orig.ID()] = cp
	c.created = append(c.created, cp)

	if ct, ok := cp.(entity.Container); ok {
		for _, s := range owned {
			children := make([]entity.Node, 0, len(s.nodes))
			for _, ch := range s.nodes {
				chCopy, err := c.Walk(ch)
				if err != nil {
					return nil, err
				}
				children = append(children, chCopy)
			}
			ct.Lock()
			err := ct.SetChildren(s.slot, children)
			ct.Unlock()
			if err != nil {
				return nil, locate(err, s.slot)
			}
		}
	}
	return cp, nil
}

// Relink rewrites references of every node created by this copier whose
// targets appear in the mapping. Other references are left untouched.
func (c *Copier) Relink() error {
	for _, n := range c.created {
		l, ok := n.(entity.Linker)
		if !ok {
			continue
		}
		l.Lock()
		err := c.relink(l)
		l.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Copier) relink(l entity.Linker) error {
	for _, f := range l.RefFields() {
		current := l.Refs(f.Name)
		next := make([]entity.Node, len(current))
		changed := false
		for i, t := range current {
			next[i] = t
			if m, ok := c.mapping[t.ID()]; ok && m != t {
				next[i] = m
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := l.SetRefs(f.Name, next); err != nil {
			return errors.Locate(err, l.ID().String(), string(l.Kind()), f.Name)
		}
	}
	return nil
}

// Index returns the identity mapping of root's ownership subtree. Seeding a
// copier with it makes references into the subtree stay on the originals,
// which is how a view tree is duplicated over a shared model.
func Index(root entity.Node) Mapping {
	m := make(Mapping)
	entity.Walk(root, func(n entity.Node, _ entity.Address) bool {
		m[n.ID()] = n
		return true
	})
	return m
}
