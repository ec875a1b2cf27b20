package serde

import (
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

type pendingRef struct {
	from   entity.ID
	kind   entity.Kind
	field  string
	target entity.ID
}

// Serializer accumulates records for every node reachable through
// ownership from the visited roots. The zero value is not usable; use
// [NewSerializer].
type Serializer struct {
	emitted entity.Set
	roots   entity.Set
	owner   map[entity.ID]entity.ID
	records []Record
	refs    []pendingRef
}

// NewSerializer returns an empty serializer.
func NewSerializer() *Serializer {
	return &Serializer{
		emitted: make(entity.Set),
		roots:   make(entity.Set),
		owner:   make(map[entity.ID]entity.ID),
	}
}

// Serialize emits roots and everything they own, and returns the records
// sorted by identifier.
func Serialize(roots ...entity.Node) (*RecordSet, error) {
	s := NewSerializer()
	for _, r := range roots {
		if err := s.Visit(r); err != nil {
			return nil, err
		}
	}
	return s.Finish()
}

// Contains reports whether a record for id has been emitted.
func (s *Serializer) Contains(id entity.ID) bool {
	return s.emitted.Has(id)
}

// Visit emits n and its owned descendants. Visiting an already emitted node
// is a no-op. A node first emitted through Visit is a root and must not be
// owned by anything visited later.
func (s *Serializer) Visit(n entity.Node) error {
	if s.Contains(n.ID()) {
		return nil
	}
	s.roots.Add(n.ID())
	return s.visit(n)
}

func (s *Serializer) visit(n entity.Node) error {
	if !s.emitted.Add(n.ID()) {
		return nil
	}

	n.RLock()
	rec := Record{ID: n.ID(), Kind: n.Kind(), Attrs: n.Attrs()}
	var children []entity.Node
	if c, ok := n.(entity.Container); ok {
		rec.Owned = make(map[string][]entity.ID)
		for _, slot := range c.Slots() {
			owned := c.Children(slot.Name)
			if len(owned) == 0 && !slot.Many {
				continue
			}
			ids := make([]entity.ID, len(owned))
			for i, ch := range owned {
				ids[i] = ch.ID()
			}
			rec.Owned[slot.Name] = ids
			children = append(children, owned...)
		}
	}
	if l, ok := n.(entity.Linker); ok {
		rec.Refs = make(map[string][]entity.ID)
		for _, field := range l.RefFields() {
			targets := l.Refs(field.Name)
			if len(targets) == 0 && !field.Many {
				continue
			}
			ids := make([]entity.ID, len(targets))
			for i, t := range targets {
				ids[i] = t.ID()
				s.refs = append(s.refs, pendingRef{from: rec.ID, kind: rec.Kind, field: field.Name, target: ids[i]})
			}
			rec.Refs[field.Name] = ids
		}
	}
	n.RUnlock()

	s.records = append(s.records, rec)

	for _, ch := range children {
		if err := s.claim(rec.ID, ch); err != nil {
			return err
		}
		if err := s.visit(ch); err != nil {
			return err
		}
	}
	return nil
}

// claim records owner as the owner of ch. A node has at most one owner and
// a root has none.
func (s *Serializer) claim(owner entity.ID, ch entity.Node) error {
	id := ch.ID()
	switch prev, ok := s.owner[id]; {
	case s.roots.Has(id):
		return errors.Structure("root element owned by %s", owner).At(id.String(), string(ch.Kind()))
	case ok && prev == owner:
		return errors.Structure("element listed twice by %s", owner).At(id.String(), string(ch.Kind()))
	case ok:
		return errors.Structure("element owned by both %s and %s", prev, owner).At(id.String(), string(ch.Kind()))
	}
	s.owner[id] = owner
	return nil
}

// Finish checks that every reference target has a record and returns the
// sorted record set.
func (s *Serializer) Finish() (*RecordSet, error) {
	for _, r := range s.refs {
		if !s.Contains(r.target) {
			return nil, errors.Structure("reference to %s has no record", r.target.Tagged()).
				At(r.from.String(), string(r.kind)).InField(r.field)
		}
	}
	return NewRecordSet(s.records)
}
