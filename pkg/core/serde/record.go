package serde

import (
	"slices"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Record is the flat form of one node. Owned and Refs map a slot or field
// name to target identifiers in order.
type Record struct {
	ID    entity.ID
	Kind  entity.Kind
	Attrs entity.Attrs
	Owned map[string][]entity.ID
	Refs  map[string][]entity.ID
}

// RecordSet is an identifier-indexed collection of records, kept sorted by
// identifier.
type RecordSet struct {
	records []Record
	index   map[entity.ID]int
}

// NewRecordSet indexes records. Duplicate identifiers are a STRUCTURE_ERROR.
func NewRecordSet(records []Record) (*RecordSet, error) {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b Record) int { return a.ID.Compare(b.ID) })

	rs := &RecordSet{records: sorted, index: make(map[entity.ID]int, len(sorted))}
	for i, r := range sorted {
		if _, dup := rs.index[r.ID]; dup {
			return nil, errors.Structure("duplicate identifier").At(r.ID.String(), string(r.Kind))
		}
		rs.index[r.ID] = i
	}
	return rs, nil
}

// Get returns the record for id.
func (rs *RecordSet) Get(id entity.ID) (Record, bool) {
	i, ok := rs.index[id]
	if !ok {
		return Record{}, false
	}
	return rs.records[i], true
}

// Len returns the number of records.
func (rs *RecordSet) Len() int { return len(rs.records) }

// All returns every record in identifier order.
func (rs *RecordSet) All() []Record { return rs.records }

// Space returns the records of one identifier space in identifier order.
func (rs *RecordSet) Space(s entity.Space) []Record {
	var out []Record
	for _, r := range rs.records {
		if r.ID.Space() == s {
			out = append(out, r)
		}
	}
	return out
}

// IDs returns the set of identifiers present.
func (rs *RecordSet) IDs() entity.Set {
	s := make(entity.Set, len(rs.records))
	for _, r := range rs.records {
		s.Add(r.ID)
	}
	return s
}
