// Package project holds a modelgraph document: the diagrams, the side
// documents and the presentational hierarchy, together with the operations
// that collaborators run against them.
//
// # Overview
//
// Each diagram is a pair of roots: a model root (semantic elements of one
// notation) and a view root ([views.Diagram]) presenting it. Several view
// roots may present the same model root. A [Project] is persisted as a
// single TOML document (see [Marshal] and [Unmarshal]) holding flat lists
// of model and view records.
//
// # Operations
//
//   - [Project.Closure] computes what a deletion would remove.
//   - [Project.Delete] removes it and returns a [Deletion] for [Project.Restore].
//   - [Project.Duplicate] copies a diagram, either deeply (new model) or
//     shallowly (new view over the same model).
//
// Operations either succeed completely or leave the project unchanged.
package project

import (
	"github.com/matzehuels/modelgraph/pkg/core/clone"
	"github.com/matzehuels/modelgraph/pkg/core/closure"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/serde"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/views"
)

// Document is a markdown side document.
type Document struct {
	ID      entity.ViewID
	Name    string
	Content string
}

// Project is an open modelgraph document. It is not safe for concurrent
// mutation; readers may share it once loading completes.
type Project struct {
	Name              string
	NewDiagramCounter int64
	Hierarchy         []*Entry

	// Unreferenced lists records present in the loaded document that no
	// diagram reaches. They are dropped on the next save.
	Unreferenced []entity.ID

	// Ignored lists record keys that were neither fields nor attributes of
	// their kind, such as misspelled field names. They are dropped on the
	// next save.
	Ignored []serde.IgnoredAttr

	reg       *entity.Registry
	diagrams  map[entity.ViewID]*views.Diagram
	documents map[entity.ViewID]*Document
}

// New returns an empty project whose documents may contain the kinds in reg.
func New(reg *entity.Registry, name string) *Project {
	return &Project{
		Name:      name,
		reg:       reg,
		diagrams:  make(map[entity.ViewID]*views.Diagram),
		documents: make(map[entity.ViewID]*Document),
	}
}

// Registry returns the kind table the project was created with.
func (p *Project) Registry() *entity.Registry { return p.reg }

// AddDiagram creates a view of model, appends a diagram entry to the top
// level and returns the view root.
func (p *Project) AddDiagram(model entity.Node, viewType string) *views.Diagram {
	d := views.NewDiagram(viewType, model)
	id, _ := d.ID().ViewID()
	p.diagrams[id] = d
	p.Hierarchy = append(p.Hierarchy, &Entry{Type: EntryDiagram, ID: id, ViewType: viewType})
	p.NewDiagramCounter++
	return d
}

// AddDocument appends a side document to the top level.
func (p *Project) AddDocument(name, content string) *Document {
	doc := &Document{ID: entity.NewViewID(), Name: name, Content: content}
	p.documents[doc.ID] = doc
	p.Hierarchy = append(p.Hierarchy, &Entry{Type: EntryDocument, ID: doc.ID, Name: name})
	return doc
}

// Diagram returns the view root with the given id.
func (p *Project) Diagram(id entity.ViewID) (*views.Diagram, bool) {
	d, ok := p.diagrams[id]
	return d, ok
}

// Document returns the side document with the given id.
func (p *Project) Document(id entity.ViewID) (*Document, bool) {
	doc, ok := p.documents[id]
	return doc, ok
}

// Diagrams returns the view roots in hierarchy order.
func (p *Project) Diagrams() []*views.Diagram {
	var out []*views.Diagram
	p.Walk(func(e *Entry, _ int) {
		if e.Type == EntryDiagram {
			if d, ok := p.diagrams[e.ID]; ok {
				out = append(out, d)
			}
		}
	})
	return out
}

// Documents returns the side documents in hierarchy order.
func (p *Project) Documents() []*Document {
	var out []*Document
	p.Walk(func(e *Entry, _ int) {
		if e.Type == EntryDocument {
			if doc, ok := p.documents[e.ID]; ok {
				out = append(out, doc)
			}
		}
	})
	return out
}

// Roots returns every model root followed by every view root, each once,
// in hierarchy order.
func (p *Project) Roots() []entity.Node {
	var models, viewRoots []entity.Node
	seen := make(entity.Set)
	for _, d := range p.Diagrams() {
		d.RLock()
		m := d.Model()
		d.RUnlock()
		if m != nil && seen.Add(m.ID()) {
			models = append(models, m)
		}
		viewRoots = append(viewRoots, d)
	}
	return append(models, viewRoots...)
}

// DiagramName returns the name attribute of the diagram's model root.
func DiagramName(d *views.Diagram) string {
	d.RLock()
	m := d.Model()
	d.RUnlock()
	if m == nil {
		return ""
	}
	m.RLock()
	defer m.RUnlock()
	name, _ := m.Attrs()["name"].(string)
	return name
}

// Find returns the node with the given id anywhere in the project.
func (p *Project) Find(id entity.ID) (entity.Node, entity.Address, bool) {
	for _, r := range p.Roots() {
		if n, at, ok := entity.Find(r, id); ok {
			return n, at, true
		}
	}
	return nil, entity.Address{}, false
}

// Closure returns seed extended by everything a deletion of seed removes.
func (p *Project) Closure(seed entity.Set) entity.Set {
	return closure.Compute(p.reg, p.Roots(), seed)
}

type rootRemoval struct {
	root    entity.Node
	removed []entity.Removed
}

type removedDiagram struct {
	entry   removedEntry
	diagram *views.Diagram
}

// Deletion records what [Project.Delete] removed.
type Deletion struct {
	// IDs is the full cascading closure that was deleted.
	IDs entity.Set

	diagrams []removedDiagram
	nodes    []rootRemoval
}

// Diagrams returns the view roots removed as a whole.
func (d *Deletion) Diagrams() []*views.Diagram {
	out := make([]*views.Diagram, len(d.diagrams))
	for i, rd := range d.diagrams {
		out[i] = rd.diagram
	}
	return out
}

// Delete removes seed and its cascading closure from the project. Diagrams
// whose view root is in the closure are removed from the hierarchy.
func (p *Project) Delete(seed entity.Set) *Deletion {
	ids := p.Closure(seed)
	del := &Deletion{IDs: ids}

	for _, re := range p.removeEntries(func(e *Entry) bool {
		return e.Type == EntryDiagram && ids.Has(e.ID.ID())
	}) {
		del.diagrams = append(del.diagrams, removedDiagram{entry: re, diagram: p.diagrams[re.entry.ID]})
		delete(p.diagrams, re.entry.ID)
	}

	for _, r := range p.Roots() {
		if removed := entity.Remove(r, ids); len(removed) > 0 {
			del.nodes = append(del.nodes, rootRemoval{root: r, removed: removed})
		}
	}
	return del
}

// Restore undoes a deletion. Deletions must be restored in reverse order.
func (p *Project) Restore(del *Deletion) error {
	for _, rd := range del.diagrams {
		p.insertEntry(rd.entry.at, rd.entry.entry)
		if rd.diagram != nil {
			p.diagrams[rd.entry.entry.ID] = rd.diagram
		}
	}
	for _, rr := range del.nodes {
		if err := entity.Restore(rr.root, rr.removed); err != nil {
			return err
		}
	}
	return nil
}

// Duplicate copies the diagram with the given view root id and inserts the
// copy right after the original. A deep duplicate also copies the model
// tree and presents the copy; a shallow duplicate presents the original
// model.
func (p *Project) Duplicate(id entity.ViewID, shallow bool) (*views.Diagram, error) {
	d, ok := p.diagrams[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "diagram %s not found", id)
	}
	pos, ok := p.locateEntry(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "diagram %s missing from hierarchy", id)
	}

	d.RLock()
	model := d.Model()
	viewType := d.ViewType
	d.RUnlock()

	var mapping clone.Mapping
	if shallow {
		mapping = clone.Index(model)
	} else {
		cp, m, err := clone.DeepCopy(p.reg, model)
		if err != nil {
			return nil, err
		}
		if err := rename(cp, " (copy)"); err != nil {
			return nil, err
		}
		mapping = m
	}

	copies, err := clone.New(p.reg, clone.WithMapping(mapping)).Copy(d)
	if err != nil {
		return nil, err
	}
	nd, ok := copies[0].(*views.Diagram)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "diagram copy has kind %s", copies[0].Kind())
	}

	nid, _ := nd.ID().ViewID()
	p.diagrams[nid] = nd
	p.insertEntry(position{parent: pos.parent, index: pos.index + 1},
		&Entry{Type: EntryDiagram, ID: nid, ViewType: viewType})
	p.NewDiagramCounter++
	return nd, nil
}

func rename(n entity.Node, suffix string) error {
	n.Lock()
	defer n.Unlock()
	attrs := n.Attrs()
	name, ok := attrs["name"].(string)
	if !ok {
		return nil
	}
	attrs["name"] = name + suffix
	return n.SetAttrs(attrs)
}
