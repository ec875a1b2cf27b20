package umlclass

import (
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Name is the notation name used as view type.
const Name = "umlclass"

// Kind tags.
const (
	KindDiagram        entity.Kind = "umlclass.diagram"
	KindPackage        entity.Kind = "umlclass.package"
	KindClass          entity.Kind = "umlclass.class"
	KindInstance       entity.Kind = "umlclass.instance"
	KindGeneralization entity.Kind = "umlclass.generalization"
	KindDependency     entity.Kind = "umlclass.dependency"
	KindAssociation    entity.Kind = "umlclass.association"
	KindComment        entity.Kind = "umlclass.comment"
	KindCommentLink    entity.Kind = "umlclass.comment_link"
)

const slotElements = "contained_elements"

// Element is any kind a diagram or package may own.
type Element interface {
	entity.Node
	umlclassElement()
}

// Classifier is an endpoint of dependencies and associations.
type Classifier interface {
	Element
	classifier()
}

// container holds the state shared by diagrams and packages.
type container struct {
	entity.Base
	Name     string
	Comment  string
	Elements []Element
}

func (c *container) Attrs() entity.Attrs {
	return entity.Attrs{"name": c.Name, "comment": c.Comment}
}

func (c *container) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	c.Name = r.String("name")
	c.Comment = r.OptString("comment")
	return r.Err()
}

func (c *container) Slots() []entity.Field {
	return []entity.Field{{Name: slotElements, Many: true}}
}

func (c *container) Children(slot string) []entity.Node {
	if slot != slotElements {
		return nil
	}
	return entity.Nodes(c.Elements)
}

func (c *container) SetChildren(slot string, children []entity.Node) error {
	if slot != slotElements {
		return errors.Structure("unknown slot %q", slot).InField(slot)
	}
	es, err := entity.List[Element](slot, children)
	if err != nil {
		return err
	}
	c.Elements = es
	return nil
}

// Add appends e. The caller holds the write lock.
func (c *container) Add(e Element) {
	c.Elements = append(c.Elements, e)
}

// Diagram is the model root of a UML class diagram.
type Diagram struct{ container }

// NewDiagram returns an empty diagram.
func NewDiagram(name string) *Diagram {
	d := &Diagram{}
	d.Init(entity.NewModelID().ID())
	d.Name = name
	return d
}

func (d *Diagram) Kind() entity.Kind { return KindDiagram }

// Package groups elements under a name.
type Package struct{ container }

// NewPackage returns an empty package.
func NewPackage(name string) *Package {
	p := &Package{}
	p.Init(entity.NewModelID().ID())
	p.Name = name
	return p
}

func (p *Package) Kind() entity.Kind { return KindPackage }
func (p *Package) umlclassElement()  {}

// Class is a UML class. Properties and Functions hold one member per line.
type Class struct {
	entity.Base
	Name       string
	Stereotype string
	Properties string
	Functions  string
	Abstract   bool
	Comment    string
}

// NewClass returns a class.
func NewClass(name string) *Class {
	c := &Class{}
	c.Init(entity.NewModelID().ID())
	c.Name = name
	return c
}

func (c *Class) Kind() entity.Kind { return KindClass }
func (c *Class) umlclassElement()  {}
func (c *Class) classifier()       {}

func (c *Class) Attrs() entity.Attrs {
	return entity.Attrs{
		"name":        c.Name,
		"stereotype":  c.Stereotype,
		"properties":  c.Properties,
		"functions":   c.Functions,
		"is_abstract": c.Abstract,
		"comment":     c.Comment,
	}
}

func (c *Class) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	c.Name = r.String("name")
	c.Stereotype = r.OptString("stereotype")
	c.Properties = r.OptString("properties")
	c.Functions = r.OptString("functions")
	c.Abstract = r.OptBool("is_abstract")
	c.Comment = r.OptString("comment")
	return r.Err()
}

// Instance is an object of some class, shown as "name: type".
type Instance struct {
	entity.Base
	InstanceName  string
	InstanceType  string
	InstanceSlots string
	Comment       string
}

// NewInstance returns an instance.
func NewInstance(name, typ string) *Instance {
	i := &Instance{}
	i.Init(entity.NewModelID().ID())
	i.InstanceName, i.InstanceType = name, typ
	return i
}

func (i *Instance) Kind() entity.Kind { return KindInstance }
func (i *Instance) umlclassElement()  {}
func (i *Instance) classifier()       {}

func (i *Instance) Attrs() entity.Attrs {
	return entity.Attrs{
		"instance_name":  i.InstanceName,
		"instance_type":  i.InstanceType,
		"instance_slots": i.InstanceSlots,
		"comment":        i.Comment,
	}
}

func (i *Instance) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	i.InstanceName = r.OptString("instance_name")
	i.InstanceType = r.OptString("instance_type")
	i.InstanceSlots = r.OptString("instance_slots")
	i.Comment = r.OptString("comment")
	return r.Err()
}

// Comment is a free-text note.
type Comment struct {
	entity.Base
	Text string
}

// NewComment returns a comment.
func NewComment(text string) *Comment {
	c := &Comment{}
	c.Init(entity.NewModelID().ID())
	c.Text = text
	return c
}

func (c *Comment) Kind() entity.Kind   { return KindComment }
func (c *Comment) umlclassElement()    {}
func (c *Comment) Attrs() entity.Attrs { return entity.Attrs{"text": c.Text} }

func (c *Comment) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	c.Text = r.OptString("text")
	return r.Err()
}

// Generalization links subclasses (sources) to superclasses (targets) and
// optionally names the generalization set.
type Generalization struct {
	entity.Base
	Sources     []*Class
	Targets     []*Class
	SetName     string
	SetCovering bool
	SetDisjoint bool
	Comment     string
}

// NewGeneralization returns a generalization.
func NewGeneralization(sources, targets []*Class) *Generalization {
	g := &Generalization{}
	g.Init(entity.NewModelID().ID())
	g.Sources, g.Targets = sources, targets
	return g
}

func (g *Generalization) Kind() entity.Kind { return KindGeneralization }
func (g *Generalization) umlclassElement()  {}

func (g *Generalization) Attrs() entity.Attrs {
	return entity.Attrs{
		"set_name":        g.SetName,
		"set_is_covering": g.SetCovering,
		"set_is_disjoint": g.SetDisjoint,
		"comment":         g.Comment,
	}
}

func (g *Generalization) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	g.SetName = r.OptString("set_name")
	g.SetCovering = r.OptBool("set_is_covering")
	g.SetDisjoint = r.OptBool("set_is_disjoint")
	g.Comment = r.OptString("comment")
	return r.Err()
}

func (g *Generalization) RefFields() []entity.Field {
	return []entity.Field{{Name: "sources", Many: true}, {Name: "targets", Many: true}}
}

func (g *Generalization) Refs(field string) []entity.Node {
	switch field {
	case "sources":
		return entity.Nodes(g.Sources)
	case "targets":
		return entity.Nodes(g.Targets)
	}
	return nil
}

func (g *Generalization) SetRefs(field string, targets []entity.Node) error {
	classes, err := entity.List[*Class](field, targets)
	if err != nil {
		return err
	}
	switch field {
	case "sources":
		g.Sources = classes
	case "targets":
		g.Targets = classes
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}

// Dependency is a dashed arrow between two classifiers.
type Dependency struct {
	entity.Base
	Source          Classifier
	Target          Classifier
	Stereotype      string
	TargetArrowOpen bool
	Comment         string
}

// NewDependency returns a dependency.
func NewDependency(source, target Classifier) *Dependency {
	d := &Dependency{}
	d.Init(entity.NewModelID().ID())
	d.Source, d.Target = source, target
	return d
}

func (d *Dependency) Kind() entity.Kind { return KindDependency }
func (d *Dependency) umlclassElement()  {}

func (d *Dependency) Attrs() entity.Attrs {
	return entity.Attrs{
		"stereotype":        d.Stereotype,
		"target_arrow_open": d.TargetArrowOpen,
		"comment":           d.Comment,
	}
}

func (d *Dependency) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	d.Stereotype = r.OptString("stereotype")
	d.TargetArrowOpen = r.OptBool("target_arrow_open")
	d.Comment = r.OptString("comment")
	return r.Err()
}

func (d *Dependency) RefFields() []entity.Field { return endpointFields }

func (d *Dependency) Refs(field string) []entity.Node {
	return endpointRefs(field, d.Source, d.Target)
}

func (d *Dependency) SetRefs(field string, targets []entity.Node) error {
	return setEndpoint(field, targets, &d.Source, &d.Target)
}

var endpointFields = []entity.Field{{Name: "source"}, {Name: "target"}}

func endpointRefs(field string, source, target Classifier) []entity.Node {
	switch field {
	case "source":
		return entity.One(source)
	case "target":
		return entity.One(target)
	}
	return nil
}

func setEndpoint(field string, targets []entity.Node, source, target *Classifier) error {
	c, err := entity.Single[Classifier](field, targets)
	if err != nil {
		return err
	}
	switch field {
	case "source":
		*source = c
	case "target":
		*target = c
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}

// Navigability of an association end.
const (
	NavigabilityUnspecified  = "unspecified"
	NavigabilityNavigable    = "navigable"
	NavigabilityNonNavigable = "non_navigable"
)

// Aggregation of an association end.
const (
	AggregationNone      = "none"
	AggregationShared    = "shared"
	AggregationComposite = "composite"
)

// AssociationEnd describes one side of an association.
type AssociationEnd struct {
	Multiplicity string
	Role         string
	Reading      string
	Navigability string
	Aggregation  string
}

func (e AssociationEnd) attrs(prefix string, a entity.Attrs) {
	a[prefix+"_label_multiplicity"] = e.Multiplicity
	a[prefix+"_label_role"] = e.Role
	a[prefix+"_label_reading"] = e.Reading
	a[prefix+"_navigability"] = e.Navigability
	a[prefix+"_aggregation"] = e.Aggregation
}

func readEnd(r *entity.AttrReader, prefix string) AssociationEnd {
	return AssociationEnd{
		Multiplicity: r.OptString(prefix + "_label_multiplicity"),
		Role:         r.OptString(prefix + "_label_role"),
		Reading:      r.OptString(prefix + "_label_reading"),
		Navigability: r.OneOf(prefix+"_navigability",
			NavigabilityUnspecified, NavigabilityNavigable, NavigabilityNonNavigable),
		Aggregation: r.OneOf(prefix+"_aggregation",
			AggregationNone, AggregationShared, AggregationComposite),
	}
}

// Association is a structural relationship between two classifiers.
type Association struct {
	entity.Base
	Source     Classifier
	Target     Classifier
	Stereotype string
	SourceEnd  AssociationEnd
	TargetEnd  AssociationEnd
	Comment    string
}

// NewAssociation returns an association with unspecified ends.
func NewAssociation(source, target Classifier) *Association {
	a := &Association{}
	a.Init(entity.NewModelID().ID())
	a.Source, a.Target = source, target
	a.SourceEnd = AssociationEnd{Navigability: NavigabilityUnspecified, Aggregation: AggregationNone}
	a.TargetEnd = a.SourceEnd
	return a
}

func (a *Association) Kind() entity.Kind { return KindAssociation }
func (a *Association) umlclassElement()  {}

func (a *Association) Attrs() entity.Attrs {
	out := entity.Attrs{"stereotype": a.Stereotype, "comment": a.Comment}
	a.SourceEnd.attrs("source", out)
	a.TargetEnd.attrs("target", out)
	return out
}

func (a *Association) SetAttrs(attrs entity.Attrs) error {
	r := attrs.Reader()
	a.Stereotype = r.OptString("stereotype")
	a.Comment = r.OptString("comment")
	a.SourceEnd = readEnd(r, "source")
	a.TargetEnd = readEnd(r, "target")
	return r.Err()
}

func (a *Association) RefFields() []entity.Field { return endpointFields }

func (a *Association) Refs(field string) []entity.Node {
	return endpointRefs(field, a.Source, a.Target)
}

func (a *Association) SetRefs(field string, targets []entity.Node) error {
	return setEndpoint(field, targets, &a.Source, &a.Target)
}

// CommentLink attaches a comment to an element.
type CommentLink struct {
	entity.Base
	Source *Comment
	Target Element
}

// NewCommentLink returns a comment link.
func NewCommentLink(source *Comment, target Element) *CommentLink {
	l := &CommentLink{}
	l.Init(entity.NewModelID().ID())
	l.Source, l.Target = source, target
	return l
}

func (l *CommentLink) Kind() entity.Kind             { return KindCommentLink }
func (l *CommentLink) umlclassElement()              {}
func (l *CommentLink) Attrs() entity.Attrs           { return entity.Attrs{} }
func (l *CommentLink) SetAttrs(a entity.Attrs) error { return nil }
func (l *CommentLink) RefFields() []entity.Field     { return endpointFields }

func (l *CommentLink) Refs(field string) []entity.Node {
	switch field {
	case "source":
		return entity.One(l.Source)
	case "target":
		return entity.One(l.Target)
	}
	return nil
}

func (l *CommentLink) SetRefs(field string, targets []entity.Node) error {
	switch field {
	case "source":
		c, err := entity.Single[*Comment](field, targets)
		if err != nil {
			return err
		}
		l.Source = c
	case "target":
		e, err := entity.Single[Element](field, targets)
		if err != nil {
			return err
		}
		l.Target = e
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}

// Register adds the UML class kinds to r.
func Register(r *entity.Registry) {
	model := func(k entity.Kind, alloc func() entity.Node, orphan entity.OrphanRule) entity.KindSpec {
		return entity.KindSpec{
			Kind:  k,
			Space: entity.ModelSpace,
			New: func(id entity.ID) entity.Node {
				n := alloc()
				n.(interface{ Init(entity.ID) }).Init(id)
				return n
			},
			Orphan: orphan,
		}
	}
	binary := entity.AnyRef("source", "target")
	r.Register(
		model(KindDiagram, func() entity.Node { return &Diagram{} }, nil),
		model(KindPackage, func() entity.Node { return &Package{} }, nil),
		model(KindClass, func() entity.Node { return &Class{} }, nil),
		model(KindInstance, func() entity.Node { return &Instance{} }, nil),
		model(KindComment, func() entity.Node { return &Comment{} }, nil),
		model(KindGeneralization, func() entity.Node { return &Generalization{} },
			entity.Either(entity.AllRefs("sources"), entity.AllRefs("targets"))),
		model(KindDependency, func() entity.Node { return &Dependency{} }, binary),
		model(KindAssociation, func() entity.Node { return &Association{} }, binary),
		model(KindCommentLink, func() entity.Node { return &CommentLink{} }, binary),
	)
}
