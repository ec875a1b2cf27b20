// Package views implements the diagrammatic presentation of model nodes.
//
// View nodes live in the view identifier space. Each one presents a model
// node through its "model" reference: a [Diagram] presents a model root,
// a [Package] presents a model node drawn as a box holding nested views, an
// [Element] presents a leaf and a [Link] presents a relationship between
// other views. Views never own model nodes, so deleting a view leaves the
// model intact while deleting a model node orphans every view of it.
package views

import (
	"slices"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Kind tags.
const (
	KindDiagram entity.Kind = "view.diagram"
	KindPackage entity.Kind = "view.package"
	KindElement entity.Kind = "view.element"
	KindLink    entity.Kind = "view.link"
)

const slotViews = "owned_views"

// View is any kind a diagram or package view may own.
type View interface {
	entity.Node
	// Model returns the presented model node.
	Model() entity.Node
}

// Bounds is a rectangle in diagram coordinates.
type Bounds struct {
	X, Y, Width, Height float64
}

func (b Bounds) attrs() entity.Attrs {
	return entity.Attrs{"x": b.X, "y": b.Y, "width": b.Width, "height": b.Height}
}

func readBounds(r *entity.AttrReader) Bounds {
	return Bounds{X: r.OptFloat("x"), Y: r.OptFloat("y"), Width: r.OptFloat("width"), Height: r.OptFloat("height")}
}

func modelTarget(field string, targets []entity.Node) (entity.Node, error) {
	n, err := entity.Single[entity.Node](field, targets)
	if err != nil {
		return nil, err
	}
	if n.ID().Space() != entity.ModelSpace {
		return nil, errors.Structure("view must present a model node, got %s", n.ID().Tagged()).InField(field)
	}
	return n, nil
}

type owned struct {
	Views []View
}

func (o *owned) Slots() []entity.Field { return []entity.Field{{Name: slotViews, Many: true}} }

func (o *owned) Children(slot string) []entity.Node {
	if slot != slotViews {
		return nil
	}
	return entity.Nodes(o.Views)
}

func (o *owned) SetChildren(slot string, children []entity.Node) error {
	if slot != slotViews {
		return errors.Structure("unknown slot %q", slot).InField(slot)
	}
	vs, err := entity.List[View](slot, children)
	if err != nil {
		return err
	}
	o.Views = vs
	return nil
}

// Add appends v. The caller holds the write lock.
func (o *owned) Add(v View) { o.Views = append(o.Views, v) }

// Diagram is the view root. ViewType names the notation of the presented
// model root.
type Diagram struct {
	entity.Base
	owned
	ViewType string
	model    entity.Node
}

// NewDiagram returns an empty view of model.
func NewDiagram(viewType string, model entity.Node) *Diagram {
	d := &Diagram{ViewType: viewType, model: model}
	d.Init(entity.NewViewID().ID())
	return d
}

func (d *Diagram) Kind() entity.Kind  { return KindDiagram }
func (d *Diagram) Model() entity.Node { return d.model }

func (d *Diagram) Attrs() entity.Attrs { return entity.Attrs{"view_type": d.ViewType} }

func (d *Diagram) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	d.ViewType = r.String("view_type")
	return r.Err()
}

func (d *Diagram) RefFields() []entity.Field { return []entity.Field{{Name: "model"}} }

func (d *Diagram) Refs(field string) []entity.Node {
	if field == "model" {
		return entity.One(d.model)
	}
	return nil
}

func (d *Diagram) SetRefs(field string, targets []entity.Node) error {
	if field != "model" {
		return errors.Structure("unknown field %q", field).InField(field)
	}
	m, err := modelTarget(field, targets)
	if err != nil {
		return err
	}
	d.model = m
	return nil
}

// Package is a box presenting a model node and holding nested views.
type Package struct {
	entity.Base
	owned
	Bounds Bounds
	model  entity.Node
}

// NewPackage returns an empty box view of model.
func NewPackage(model entity.Node, b Bounds) *Package {
	p := &Package{Bounds: b, model: model}
	p.Init(entity.NewViewID().ID())
	return p
}

func (p *Package) Kind() entity.Kind   { return KindPackage }
func (p *Package) Model() entity.Node  { return p.model }
func (p *Package) Attrs() entity.Attrs { return p.Bounds.attrs() }

func (p *Package) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	p.Bounds = readBounds(r)
	return r.Err()
}

func (p *Package) RefFields() []entity.Field { return []entity.Field{{Name: "model"}} }

func (p *Package) Refs(field string) []entity.Node {
	if field == "model" {
		return entity.One(p.model)
	}
	return nil
}

func (p *Package) SetRefs(field string, targets []entity.Node) error {
	if field != "model" {
		return errors.Structure("unknown field %q", field).InField(field)
	}
	m, err := modelTarget(field, targets)
	if err != nil {
		return err
	}
	p.model = m
	return nil
}

// Element presents a leaf model node.
type Element struct {
	entity.Base
	Bounds Bounds
	model  entity.Node
}

// NewElement returns a view of model.
func NewElement(model entity.Node, b Bounds) *Element {
	e := &Element{Bounds: b, model: model}
	e.Init(entity.NewViewID().ID())
	return e
}

func (e *Element) Kind() entity.Kind         { return KindElement }
func (e *Element) Model() entity.Node        { return e.model }
func (e *Element) Attrs() entity.Attrs       { return e.Bounds.attrs() }
func (e *Element) RefFields() []entity.Field { return []entity.Field{{Name: "model"}} }

func (e *Element) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	e.Bounds = readBounds(r)
	return r.Err()
}

func (e *Element) Refs(field string) []entity.Node {
	if field == "model" {
		return entity.One(e.model)
	}
	return nil
}

func (e *Element) SetRefs(field string, targets []entity.Node) error {
	if field != "model" {
		return errors.Structure("unknown field %q", field).InField(field)
	}
	m, err := modelTarget(field, targets)
	if err != nil {
		return err
	}
	e.model = m
	return nil
}

// Link presents a relationship. Sources and Targets are the views of the
// relationship's endpoints.
type Link struct {
	entity.Base
	Sources []View
	Targets []View
	CenterX float64
	CenterY float64
	model   entity.Node
}

// NewLink returns a view of the relationship model between the given views.
func NewLink(model entity.Node, sources, targets []View) *Link {
	l := &Link{model: model, Sources: slices.Clone(sources), Targets: slices.Clone(targets)}
	l.Init(entity.NewViewID().ID())
	return l
}

func (l *Link) Kind() entity.Kind  { return KindLink }
func (l *Link) Model() entity.Node { return l.model }

func (l *Link) Attrs() entity.Attrs {
	return entity.Attrs{"center_x": l.CenterX, "center_y": l.CenterY}
}

func (l *Link) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	l.CenterX = r.OptFloat("center_x")
	l.CenterY = r.OptFloat("center_y")
	return r.Err()
}

func (l *Link) RefFields() []entity.Field {
	return []entity.Field{{Name: "model"}, {Name: "sources", Many: true}, {Name: "targets", Many: true}}
}

func (l *Link) Refs(field string) []entity.Node {
	switch field {
	case "model":
		return entity.One(l.model)
	case "sources":
		return entity.Nodes(l.Sources)
	case "targets":
		return entity.Nodes(l.Targets)
	}
	return nil
}

func (l *Link) SetRefs(field string, targets []entity.Node) error {
	switch field {
	case "model":
		m, err := modelTarget(field, targets)
		if err != nil {
			return err
		}
		l.model = m
	case "sources", "targets":
		vs, err := entity.List[View](field, targets)
		if err != nil {
			return err
		}
		if field == "sources" {
			l.Sources = vs
		} else {
			l.Targets = vs
		}
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}

// Register adds the view kinds to r.
func Register(r *entity.Registry) {
	presents := entity.AnyRef("model")
	r.Register(
		entity.KindSpec{Kind: KindDiagram, Space: entity.ViewSpace, Orphan: presents,
			New: func(id entity.ID) entity.Node { d := &Diagram{}; d.Init(id); return d }},
		entity.KindSpec{Kind: KindPackage, Space: entity.ViewSpace, Orphan: presents,
			New: func(id entity.ID) entity.Node { p := &Package{}; p.Init(id); return p }},
		entity.KindSpec{Kind: KindElement, Space: entity.ViewSpace, Orphan: presents,
			New: func(id entity.ID) entity.Node { e := &Element{}; e.Init(id); return e }},
		entity.KindSpec{Kind: KindLink, Space: entity.ViewSpace,
			Orphan: entity.Either(presents, entity.AllRefs("sources"), entity.AllRefs("targets")),
			New:    func(id entity.ID) entity.Node { l := &Link{}; l.Init(id); return l }},
	)
}
