package project

import (
	"bytes"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/serde"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/views"
)

// FormatVersion is written to every document and required on read.
const FormatVersion = "0.2.0"

// Reserved record keys.
const (
	keyUUID = "uuid"
	keyType = "type"
)

type fileDoc struct {
	FormatVersion     string           `toml:"format_version"`
	ProjectName       string           `toml:"project_name"`
	NewDiagramCounter int64            `toml:"new_diagram_counter"`
	Hierarchy         []fileEntry      `toml:"hierarchy,omitempty"`
	Documents         []fileDocument   `toml:"document,omitempty"`
	Models            []map[string]any `toml:"model,omitempty"`
	Views             []map[string]any `toml:"view,omitempty"`
}

type fileEntry struct {
	Type     string      `toml:"type"`
	UUID     string      `toml:"uuid"`
	Name     string      `toml:"name,omitempty"`
	ViewType string      `toml:"view_type,omitempty"`
	Children []fileEntry `toml:"children,omitempty"`
}

type fileDocument struct {
	UUID    string `toml:"uuid"`
	Name    string `toml:"name"`
	Content string `toml:"content"`
}

// fieldShape tells the codec which record keys hold identifiers.
type fieldShape struct {
	owned bool
	many  bool
}

type shapes struct {
	reg   *entity.Registry
	cache map[entity.Kind]map[string]fieldShape
}

func newShapes(reg *entity.Registry) *shapes {
	return &shapes{reg: reg, cache: make(map[entity.Kind]map[string]fieldShape)}
}

func (s *shapes) of(kind entity.Kind, space entity.Space) (map[string]fieldShape, error) {
	if m, ok := s.cache[kind]; ok {
		return m, nil
	}
	n, err := s.reg.New(kind, entity.New(space))
	if err != nil {
		return nil, err
	}
	m := make(map[string]fieldShape)
	if c, ok := n.(entity.Container); ok {
		for _, f := range c.Slots() {
			m[f.Name] = fieldShape{owned: true, many: f.Many}
		}
	}
	if l, ok := n.(entity.Linker); ok {
		for _, f := range l.RefFields() {
			m[f.Name] = fieldShape{many: f.Many}
		}
	}
	s.cache[kind] = m
	return m, nil
}

// Marshal encodes p as a TOML document. Records are sorted by identifier,
// so encoding the same project twice yields identical bytes.
func Marshal(p *Project) ([]byte, error) {
	rs, err := serde.Serialize(p.Roots()...)
	if err != nil {
		return nil, err
	}
	sh := newShapes(p.reg)

	doc := fileDoc{
		FormatVersion:     FormatVersion,
		ProjectName:       p.Name,
		NewDiagramCounter: p.NewDiagramCounter,
		Hierarchy:         encodeEntries(p.Hierarchy),
	}
	for _, d := range p.Documents() {
		doc.Documents = append(doc.Documents, fileDocument{UUID: d.ID.String(), Name: d.Name, Content: d.Content})
	}
	for _, r := range rs.All() {
		table, err := encodeRecord(r, sh)
		if err != nil {
			return nil, err
		}
		if r.ID.Space() == entity.ModelSpace {
			doc.Models = append(doc.Models, table)
		} else {
			doc.Views = append(doc.Views, table)
		}
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode project")
	}
	return buf.Bytes(), nil
}

func encodeEntries(entries []*Entry) []fileEntry {
	out := make([]fileEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, fileEntry{
			Type:     string(e.Type),
			UUID:     e.ID.String(),
			Name:     e.Name,
			ViewType: e.ViewType,
			Children: encodeEntries(e.Children),
		})
	}
	return out
}

func encodeRecord(r serde.Record, sh *shapes) (map[string]any, error) {
	fields, err := sh.of(r.Kind, r.ID.Space())
	if err != nil {
		return nil, err
	}
	table := make(map[string]any, len(r.Attrs)+len(r.Owned)+len(r.Refs)+2)
	table[keyUUID] = r.ID.String()
	table[keyType] = string(r.Kind)

	put := func(key string, v any) error {
		if _, dup := table[key]; dup {
			return errors.Structure("field %q used twice", key).At(r.ID.String(), string(r.Kind)).InField(key)
		}
		table[key] = v
		return nil
	}
	for _, k := range r.Attrs.Keys() {
		if err := put(k, r.Attrs[k]); err != nil {
			return nil, err
		}
	}
	for _, m := range []map[string][]entity.ID{r.Owned, r.Refs} {
		for name, ids := range m {
			if err := put(name, encodeIDs(ids, fields[name].many)); err != nil {
				return nil, err
			}
		}
	}
	return table, nil
}

// encodeIDs writes single-valued fields as a string and list fields as an
// array. The decoder accepts either form for every field.
func encodeIDs(ids []entity.ID, many bool) any {
	if !many && len(ids) == 1 {
		return ids[0].String()
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// Unmarshal decodes a TOML document. Every record reachable from a diagram
// is instantiated; any malformed or dangling record fails the whole load.
func Unmarshal(data []byte, reg *entity.Registry) (*Project, error) {
	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse project document")
	}
	if doc.FormatVersion != FormatVersion {
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format version %q (want %q)",
			doc.FormatVersion, FormatVersion)
	}

	// Both lookup tables are complete before any record is decoded, so
	// references can be resolved to the right space.
	raw := map[entity.Space]map[entity.ID]map[string]any{
		entity.ModelSpace: {},
		entity.ViewSpace:  {},
	}
	for space, tables := range map[entity.Space][]map[string]any{
		entity.ModelSpace: doc.Models,
		entity.ViewSpace:  doc.Views,
	} {
		for _, t := range tables {
			s, ok := t[keyUUID].(string)
			if !ok {
				return nil, errors.Structure("record without %q field", keyUUID)
			}
			id, err := entity.Parse(space, s)
			if err != nil {
				return nil, err
			}
			if _, dup := raw[space][id]; dup {
				return nil, errors.Structure("duplicate identifier").At(s, "")
			}
			raw[space][id] = t
		}
	}

	dec := &recordDecoder{raw: raw, shapes: newShapes(reg)}
	var records []serde.Record
	for _, space := range []entity.Space{entity.ModelSpace, entity.ViewSpace} {
		ids := make([]entity.ID, 0, len(raw[space]))
		for id := range raw[space] {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, entity.ID.Compare)
		for _, id := range ids {
			r, err := dec.decode(id, raw[space][id])
			if err != nil {
				return nil, err
			}
			records = append(records, r)
		}
	}
	rs, err := serde.NewRecordSet(records)
	if err != nil {
		return nil, err
	}

	p := New(reg, doc.ProjectName)
	p.NewDiagramCounter = doc.NewDiagramCounter
	for _, d := range doc.Documents {
		id, err := entity.ParseViewID(d.UUID)
		if err != nil {
			return nil, err
		}
		p.documents[id] = &Document{ID: id, Name: d.Name, Content: d.Content}
	}

	des := serde.NewDeserializer(reg, rs)
	hierarchy, err := p.decodeEntries(doc.Hierarchy, des)
	if err != nil {
		return nil, err
	}
	p.Hierarchy = hierarchy
	for _, d := range p.Diagrams() {
		if err := checkRoot(des, d); err != nil {
			return nil, err
		}
		if err := checkRoot(des, d.Model()); err != nil {
			return nil, err
		}
	}
	p.Unreferenced = des.Unreached()
	p.Ignored = des.Ignored()
	return p, nil
}

// checkRoot fails if n, which a diagram entry uses as a root, is owned by
// another record.
func checkRoot(des *serde.Deserializer, n entity.Node) error {
	if owner, ok := des.Owner(n.ID()); ok {
		return errors.Structure("root element owned by %s", owner).At(n.ID().String(), string(n.Kind()))
	}
	return nil
}

type recordDecoder struct {
	raw    map[entity.Space]map[entity.ID]map[string]any
	shapes *shapes
}

func (d *recordDecoder) decode(id entity.ID, t map[string]any) (serde.Record, error) {
	kind, ok := t[keyType].(string)
	if !ok {
		return serde.Record{}, errors.Structure("missing field %q", keyType).At(id.String(), "").InField(keyType)
	}
	r := serde.Record{
		ID:    id,
		Kind:  entity.Kind(kind),
		Attrs: entity.Attrs{},
		Owned: map[string][]entity.ID{},
		Refs:  map[string][]entity.ID{},
	}
	fields, err := d.shapes.of(r.Kind, id.Space())
	if err != nil {
		return serde.Record{}, err
	}
	for key, v := range t {
		if key == keyUUID || key == keyType {
			continue
		}
		shape, isField := fields[key]
		if !isField {
			r.Attrs[key] = v
			continue
		}
		ids, err := d.decodeIDs(id, shape.owned, v)
		if err != nil {
			return serde.Record{}, errors.Locate(err, id.String(), kind, key)
		}
		if shape.owned {
			r.Owned[key] = ids
		} else {
			r.Refs[key] = ids
		}
	}
	return r, nil
}

// decodeIDs resolves identifier strings. Owned children share the owner's
// space; reference targets are looked up in both tables.
func (d *recordDecoder) decodeIDs(owner entity.ID, owned bool, v any) ([]entity.ID, error) {
	var strs []string
	switch v := v.(type) {
	case string:
		strs = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Structure("identifier list holds %T", item)
			}
			strs = append(strs, s)
		}
	default:
		return nil, errors.Structure("identifier field holds %T", v)
	}

	out := make([]entity.ID, 0, len(strs))
	for _, s := range strs {
		id, err := d.resolve(owner.Space(), owned, s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *recordDecoder) resolve(home entity.Space, owned bool, s string) (entity.ID, error) {
	same, err := entity.Parse(home, s)
	if err != nil {
		return entity.ID{}, err
	}
	if _, ok := d.raw[home][same]; ok || owned {
		return same, nil
	}
	other := entity.ViewSpace
	if home == entity.ViewSpace {
		other = entity.ModelSpace
	}
	cross, _ := entity.Parse(other, s)
	if _, ok := d.raw[other][cross]; ok {
		return cross, nil
	}
	// Unknown in both tables; the deserializer reports it with context.
	return same, nil
}

func (p *Project) decodeEntries(entries []fileEntry, des *serde.Deserializer) ([]*Entry, error) {
	out := make([]*Entry, 0, len(entries))
	for _, fe := range entries {
		id, err := entity.ParseViewID(fe.UUID)
		if err != nil {
			return nil, err
		}
		e := &Entry{Type: EntryType(fe.Type), ID: id, Name: fe.Name, ViewType: fe.ViewType}
		switch e.Type {
		case EntryFolder:
			children, err := p.decodeEntries(fe.Children, des)
			if err != nil {
				return nil, err
			}
			e.Children = children
		case EntryDiagram:
			d, err := serde.GetAs[*views.Diagram](des, id.ID())
			if err != nil {
				return nil, err
			}
			if d.Model() == nil {
				return nil, errors.Structure("diagram presents no model").At(id.String(), string(views.KindDiagram))
			}
			if e.ViewType == "" {
				e.ViewType = d.ViewType
			}
			p.diagrams[id] = d
		case EntryDocument:
			if _, ok := p.documents[id]; !ok {
				return nil, errors.UnknownIdentifier(id.String()).InField("hierarchy")
			}
		default:
			return nil, errors.Structure("unknown hierarchy entry type %q", fe.Type).At(fe.UUID, "").InField("hierarchy")
		}
		out = append(out, e)
	}
	return out, nil
}
