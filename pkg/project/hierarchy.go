package project

import (
	"fmt"
	"slices"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
)

// EntryType distinguishes hierarchy entries.
type EntryType string

// Hierarchy entry types.
const (
	EntryFolder   EntryType = "folder"
	EntryDiagram  EntryType = "diagram"
	EntryDocument EntryType = "document"
)

// Entry is a node of the presentational project tree. Folders carry a name
// and children; diagram entries carry the view type of the diagram; document
// entries point at a [Document].
type Entry struct {
	Type     EntryType
	ID       entity.ViewID
	Name     string
	ViewType string
	Children []*Entry
}

type position struct {
	parent *Entry // nil for top level
	index  int
}

func (p *Project) siblings(parent *Entry) []*Entry {
	if parent == nil {
		return p.Hierarchy
	}
	return parent.Children
}

func (p *Project) setSiblings(parent *Entry, entries []*Entry) {
	if parent == nil {
		p.Hierarchy = entries
		return
	}
	parent.Children = entries
}

func (p *Project) insertEntry(at position, e *Entry) {
	sib := p.siblings(at.parent)
	idx := at.index
	if idx < 0 || idx > len(sib) {
		idx = len(sib)
	}
	p.setSiblings(at.parent, slices.Insert(sib, idx, e))
}

// locateEntry returns the position of the entry with the given id.
func (p *Project) locateEntry(id entity.ViewID) (position, bool) {
	var walk func(parent *Entry, entries []*Entry) (position, bool)
	walk = func(parent *Entry, entries []*Entry) (position, bool) {
		for i, e := range entries {
			if e.ID == id {
				return position{parent: parent, index: i}, true
			}
			if pos, ok := walk(e, e.Children); ok {
				return pos, true
			}
		}
		return position{}, false
	}
	return walk(nil, p.Hierarchy)
}

type removedEntry struct {
	entry *Entry
	at    position
}

// removeEntries detaches every entry matching drop, in pre-order.
func (p *Project) removeEntries(drop func(*Entry) bool) []removedEntry {
	var removed []removedEntry
	var walk func(parent *Entry)
	walk = func(parent *Entry) {
		entries := p.siblings(parent)
		kept := make([]*Entry, 0, len(entries))
		for i, e := range entries {
			if drop(e) {
				removed = append(removed, removedEntry{entry: e, at: position{parent: parent, index: i}})
				continue
			}
			kept = append(kept, e)
		}
		p.setSiblings(parent, kept)
		for _, e := range kept {
			if e.Type == EntryFolder {
				walk(e)
			}
		}
	}
	walk(nil)
	return removed
}

// Walk visits hierarchy entries in pre-order with their depth.
func (p *Project) Walk(fn func(e *Entry, depth int)) {
	var walk func(entries []*Entry, depth int)
	walk = func(entries []*Entry, depth int) {
		for _, e := range entries {
			fn(e, depth)
			walk(e.Children, depth+1)
		}
	}
	walk(p.Hierarchy, 0)
}

// AddFolder appends an empty folder to the top level.
func (p *Project) AddFolder(name string) *Entry {
	e := &Entry{Type: EntryFolder, ID: entity.NewViewID(), Name: name}
	p.Hierarchy = append(p.Hierarchy, e)
	return e
}

// String implements fmt.Stringer for diagnostics.
func (e *Entry) String() string {
	switch e.Type {
	case EntryDiagram:
		return fmt.Sprintf("diagram %s (%s)", e.ID, e.ViewType)
	default:
		return fmt.Sprintf("%s %s %q", e.Type, e.ID, e.Name)
	}
}
