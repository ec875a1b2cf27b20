// Package democsd implements DEMO Coordination Structure Diagram models.
//
// Transactors may own the transaction they execute; links connect a
// transactor to a transaction. Deleting a transactor deletes its owned
// transaction, which in turn orphans every link targeting that transaction.
package democsd

import (
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Name is the notation name used as view type.
const Name = "democsd"

// Kind tags.
const (
	KindDiagram     entity.Kind = "democsd.diagram"
	KindPackage     entity.Kind = "democsd.package"
	KindTransactor  entity.Kind = "democsd.transactor"
	KindTransaction entity.Kind = "democsd.transaction"
	KindLink        entity.Kind = "democsd.link"
)

// Link types.
const (
	LinkInitiation      = "initiation"
	LinkInterstriction  = "interstriction"
	LinkInterimpediment = "interimpediment"
)

const slotElements = "contained_elements"

// Element is any kind a diagram or package may own.
type Element interface {
	entity.Node
	democsdElement()
}

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
func (c *container) Add(e Element) { c.Elements = append(c.Elements, e) }

// Diagram is the model root of a coordination structure diagram.
type Diagram struct{ container }

// NewDiagram returns an empty diagram.
func NewDiagram(name string) *Diagram {
	d := &Diagram{}
	d.Init(entity.NewModelID().ID())
	d.Name = name
	return d
}

func (d *Diagram) Kind() entity.Kind { return KindDiagram }

// Package groups elements.
type Package struct{ container }

// NewPackage returns an empty package.
func NewPackage(name string) *Package {
	p := &Package{}
	p.Init(entity.NewModelID().ID())
	p.Name = name
	return p
}

func (p *Package) Kind() entity.Kind { return KindPackage }
func (p *Package) democsdElement()   {}

// Transaction is a unit of coordination between actors.
type Transaction struct {
	entity.Base
	Identifier string
	Name       string
	Comment    string
}

// NewTransaction returns a transaction, e.g. NewTransaction("T01", "order completing").
func NewTransaction(identifier, name string) *Transaction {
	t := &Transaction{}
	t.Init(entity.NewModelID().ID())
	t.Identifier, t.Name = identifier, name
	return t
}

func (t *Transaction) Kind() entity.Kind { return KindTransaction }
func (t *Transaction) democsdElement()   {}

func (t *Transaction) Attrs() entity.Attrs {
	return entity.Attrs{"identifier": t.Identifier, "name": t.Name, "comment": t.Comment}
}

func (t *Transaction) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	t.Identifier = r.OptString("identifier")
	t.Name = r.OptString("name")
	t.Comment = r.OptString("comment")
	return r.Err()
}

// Transactor is an actor role, optionally owning the transaction it
// executes.
type Transactor struct {
	entity.Base
	Identifier     string
	Name           string
	Internal       bool
	Transaction    *Transaction
	SelfActivating bool
	Comment        string
}

// NewTransactor returns a transactor without transaction.
func NewTransactor(identifier, name string, internal bool) *Transactor {
	t := &Transactor{}
	t.Init(entity.NewModelID().ID())
	t.Identifier, t.Name, t.Internal = identifier, name, internal
	return t
}

func (t *Transactor) Kind() entity.Kind { return KindTransactor }
func (t *Transactor) democsdElement()   {}

func (t *Transactor) Attrs() entity.Attrs {
	return entity.Attrs{
		"identifier":                 t.Identifier,
		"name":                       t.Name,
		"internal":                   t.Internal,
		"transaction_selfactivating": t.SelfActivating,
		"comment":                    t.Comment,
	}
}

func (t *Transactor) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	t.Identifier = r.OptString("identifier")
	t.Name = r.OptString("name")
	t.Internal = r.OptBool("internal")
	t.SelfActivating = r.OptBool("transaction_selfactivating")
	t.Comment = r.OptString("comment")
	return r.Err()
}

func (t *Transactor) Slots() []entity.Field { return []entity.Field{{Name: "transaction"}} }

func (t *Transactor) Children(slot string) []entity.Node {
	if slot != "transaction" {
		return nil
	}
	return entity.One(t.Transaction)
}

func (t *Transactor) SetChildren(slot string, children []entity.Node) error {
	if slot != "transaction" {
		return errors.Structure("unknown slot %q", slot).InField(slot)
	}
	tx, err := entity.Optional[*Transaction](slot, children)
	if err != nil {
		return err
	}
	t.Transaction = tx
	return nil
}

// Link connects a transactor to a transaction.
type Link struct {
	entity.Base
	Name     string
	LinkType string
	Source   *Transactor
	Target   *Transaction
	Comment  string
}

// NewLink returns an initiation link.
func NewLink(source *Transactor, target *Transaction) *Link {
	l := &Link{LinkType: LinkInitiation}
	l.Init(entity.NewModelID().ID())
	l.Source, l.Target = source, target
	return l
}

func (l *Link) Kind() entity.Kind { return KindLink }
func (l *Link) democsdElement()   {}

func (l *Link) Attrs() entity.Attrs {
	return entity.Attrs{"name": l.Name, "link_type": l.LinkType, "comment": l.Comment}
}

func (l *Link) SetAttrs(a entity.Attrs) error {
	r := a.Reader()
	l.Name = r.OptString("name")
	l.LinkType = r.OneOf("link_type", LinkInitiation, LinkInterstriction, LinkInterimpediment)
	l.Comment = r.OptString("comment")
	return r.Err()
}

func (l *Link) RefFields() []entity.Field {
	return []entity.Field{{Name: "source"}, {Name: "target"}}
}

func (l *Link) Refs(field string) []entity.Node {
	switch field {
	case "source":
		return entity.One(l.Source)
	case "target":
		return entity.One(l.Target)
	}
	return nil
}

func (l *Link) SetRefs(field string, targets []entity.Node) error {
	switch field {
	case "source":
		s, err := entity.Single[*Transactor](field, targets)
		if err != nil {
			return err
		}
		l.Source = s
	case "target":
		t, err := entity.Single[*Transaction](field, targets)
		if err != nil {
			return err
		}
		l.Target = t
	default:
		return errors.Structure("unknown field %q", field).InField(field)
	}
	return nil
}

// Register adds the DEMO CSD kinds to r.
func Register(r *entity.Registry) {
	spec := func(k entity.Kind, alloc func() entity.Node, orphan entity.OrphanRule) entity.KindSpec {
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
	r.Register(
		spec(KindDiagram, func() entity.Node { return &Diagram{} }, nil),
		spec(KindPackage, func() entity.Node { return &Package{} }, nil),
		spec(KindTransactor, func() entity.Node { return &Transactor{} }, nil),
		spec(KindTransaction, func() entity.Node { return &Transaction{} }, nil),
		spec(KindLink, func() entity.Node { return &Link{LinkType: LinkInitiation} }, entity.AnyRef("source", "target")),
	)
}
