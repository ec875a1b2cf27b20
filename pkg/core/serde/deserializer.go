package serde

import (
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Deserializer instantiates nodes from a record set on demand.
// It is scoped to one load and is not safe for concurrent use.
type Deserializer struct {
	reg     *entity.Registry
	source  *RecordSet
	cache   map[entity.ID]entity.Node
	owner   map[entity.ID]entity.ID
	ignored []IgnoredAttr
	err     error
}

// IgnoredAttr is a record attribute that its kind did not take up. It is
// not written back on the next save.
type IgnoredAttr struct {
	ID   entity.ID
	Kind entity.Kind
	Key  string
}

// NewDeserializer returns a deserializer reading from source.
func NewDeserializer(reg *entity.Registry, source *RecordSet) *Deserializer {
	return &Deserializer{
		reg:    reg,
		source: source,
		cache:  make(map[entity.ID]entity.Node),
		owner:  make(map[entity.ID]entity.ID),
	}
}

// Get returns the node for id, instantiating it and everything it owns or
// references on first use. Repeated calls return the same node.
func (d *Deserializer) Get(id entity.ID) (entity.Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	n, err := d.get(id)
	if err != nil {
		d.err = err
		d.cache, d.owner = nil, nil
		return nil, err
	}
	return n, nil
}

// GetAs returns the node for id as T. A node of another type is a
// STRUCTURE_ERROR.
func GetAs[T entity.Node](d *Deserializer, id entity.ID) (T, error) {
	var zero T
	n, err := d.Get(id)
	if err != nil {
		return zero, err
	}
	t, ok := n.(T)
	if !ok {
		err := errors.Structure("element has unexpected type").At(id.String(), string(n.Kind()))
		d.err, d.cache, d.owner = err, nil, nil
		return zero, err
	}
	return t, nil
}

// Err returns the error that poisoned the deserializer, if any.
func (d *Deserializer) Err() error { return d.err }

// Unreached returns identifiers of records that no Get call has
// instantiated so far, in identifier order.
func (d *Deserializer) Unreached() []entity.ID {
	var out []entity.ID
	for _, r := range d.source.All() {
		if _, ok := d.cache[r.ID]; !ok {
			out = append(out, r.ID)
		}
	}
	return out
}

// Owner returns the identifier of the container that owns id, if any
// loaded container does.
func (d *Deserializer) Owner(id entity.ID) (entity.ID, bool) {
	o, ok := d.owner[id]
	return o, ok
}

// Ignored returns the attributes of instantiated records that their kinds
// did not recognize, in load order.
func (d *Deserializer) Ignored() []IgnoredAttr { return d.ignored }

func (d *Deserializer) get(id entity.ID) (entity.Node, error) {
	if n, ok := d.cache[id]; ok {
		return n, nil
	}
	rec, ok := d.source.Get(id)
	if !ok {
		return nil, errors.UnknownIdentifier(id.Tagged())
	}
	n, err := d.reg.New(rec.Kind, id)
	if err != nil {
		return nil, err
	}
	// Cached before any field is resolved so cycles find it.
	d.cache[id] = n

	entityID, kind := id.String(), string(rec.Kind)

	n.Lock()
	err = n.SetAttrs(rec.Attrs)
	kept := n.Attrs()
	n.Unlock()
	if err != nil {
		return nil, errors.Locate(err, entityID, kind, "")
	}
	for _, key := range rec.Attrs.Keys() {
		if _, ok := kept[key]; !ok {
			d.ignored = append(d.ignored, IgnoredAttr{ID: id, Kind: rec.Kind, Key: key})
		}
	}

	c, isContainer := n.(entity.Container)
	l, isLinker := n.(entity.Linker)
	if err := checkFields(rec.Owned, isContainer, c, rec); err != nil {
		return nil, err
	}
	if err := checkRefFields(rec.Refs, isLinker, l, rec); err != nil {
		return nil, err
	}

	if isContainer {
		for _, slot := range c.Slots() {
			if err := d.claim(rec, slot.Name, rec.Owned[slot.Name]); err != nil {
				return nil, err
			}
			children, err := d.resolve(rec, slot, rec.Owned[slot.Name])
			if err != nil {
				return nil, err
			}
			c.Lock()
			err = c.SetChildren(slot.Name, children)
			c.Unlock()
			if err != nil {
				return nil, errors.Locate(err, entityID, kind, slot.Name)
			}
		}
	}
	if isLinker {
		for _, field := range l.RefFields() {
			targets, err := d.resolve(rec, field, rec.Refs[field.Name])
			if err != nil {
				return nil, err
			}
			l.Lock()
			err = l.SetRefs(field.Name, targets)
			l.Unlock()
			if err != nil {
				return nil, errors.Locate(err, entityID, kind, field.Name)
			}
		}
	}
	return n, nil
}

// claim records rec as the owner of children. A child that already has an
// owner, or that is rec itself or one of its owners, is a STRUCTURE_ERROR.
func (d *Deserializer) claim(rec Record, slot string, children []entity.ID) error {
	for _, child := range children {
		kind := ""
		if r, ok := d.source.Get(child); ok {
			kind = string(r.Kind)
		}
		if prev, ok := d.owner[child]; ok && prev == rec.ID {
			return errors.Structure("element listed twice").At(child.String(), kind).InField(slot)
		} else if ok {
			return errors.Structure("element owned by both %s and %s", prev, rec.ID).
				At(child.String(), kind).InField(slot)
		}
		for up, ok := rec.ID, true; ok; up, ok = d.owner[up] {
			if up == child {
				return errors.Structure("element owns itself through %s", rec.ID).
					At(child.String(), kind).InField(slot)
			}
		}
		d.owner[child] = rec.ID
	}
	return nil
}

func (d *Deserializer) resolve(rec Record, field entity.Field, ids []entity.ID) ([]entity.Node, error) {
	if !field.Many && len(ids) > 1 {
		return nil, errors.Structure("field holds %d elements, want at most one", len(ids)).
			At(rec.ID.String(), string(rec.Kind)).InField(field.Name)
	}
	nodes := make([]entity.Node, 0, len(ids))
	for _, target := range ids {
		t, err := d.get(target)
		if err != nil {
			return nil, errors.Locate(err, rec.ID.String(), string(rec.Kind), field.Name)
		}
		nodes = append(nodes, t)
	}
	return nodes, nil
}

func checkFields(owned map[string][]entity.ID, ok bool, c entity.Container, rec Record) error {
	if len(owned) == 0 {
		return nil
	}
	if !ok {
		return errors.Structure("kind does not own children").At(rec.ID.String(), string(rec.Kind))
	}
	return unknownField(owned, c.Slots(), rec)
}

func checkRefFields(refs map[string][]entity.ID, ok bool, l entity.Linker, rec Record) error {
	if len(refs) == 0 {
		return nil
	}
	if !ok {
		return errors.Structure("kind has no reference fields").At(rec.ID.String(), string(rec.Kind))
	}
	return unknownField(refs, l.RefFields(), rec)
}

func unknownField(m map[string][]entity.ID, fields []entity.Field, rec Record) error {
	for name := range m {
		known := false
		for _, f := range fields {
			if f.Name == name {
				known = true
				break
			}
		}
		if !known {
			return errors.Structure("unknown field %q", name).At(rec.ID.String(), string(rec.Kind)).InField(name)
		}
	}
	return nil
}
