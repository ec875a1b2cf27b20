package views_test

import (
	"testing"

	"github.com/matzehuels/modelgraph/pkg/core/closure"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/serde"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/notation/umlclass"
	"github.com/matzehuels/modelgraph/pkg/views"
)

func registry() *entity.Registry {
	r := entity.NewRegistry()
	umlclass.Register(r)
	views.Register(r)
	return r
}

func TestSetRefsRejectsViewTargets(t *testing.T) {
	cls := umlclass.NewClass("A")
	el := views.NewElement(cls, views.Bounds{})
	other := views.NewElement(cls, views.Bounds{})

	err := el.SetRefs("model", []entity.Node{other})
	if !errors.Is(err, errors.ErrCodeStructure) {
		t.Errorf("err = %v, want STRUCTURE_ERROR", err)
	}
	if el.Model() != cls {
		t.Error("failed SetRefs changed the model")
	}
}

func TestSetChildrenRejectsModelNodes(t *testing.T) {
	d := views.NewDiagram(umlclass.Name, umlclass.NewDiagram("D"))
	err := d.SetChildren("owned_views", []entity.Node{umlclass.NewClass("A")})
	if !errors.Is(err, errors.ErrCodeStructure) {
		t.Errorf("err = %v, want STRUCTURE_ERROR", err)
	}
}

func TestOrphanRules(t *testing.T) {
	reg := registry()
	model := umlclass.NewDiagram("D")
	a, b, c := umlclass.NewClass("A"), umlclass.NewClass("B"), umlclass.NewClass("C")
	model.Add(a)
	model.Add(b)
	model.Add(c)
	gen := umlclass.NewGeneralization([]*umlclass.Class{a, b}, []*umlclass.Class{c})
	model.Add(gen)

	d := views.NewDiagram(umlclass.Name, model)
	va := views.NewElement(a, views.Bounds{})
	vb := views.NewElement(b, views.Bounds{})
	vc := views.NewElement(c, views.Bounds{})
	link := views.NewLink(gen, []views.View{va, vb}, []views.View{vc})
	for _, v := range []views.View{va, vb, vc, link} {
		d.Add(v)
	}
	roots := []entity.Node{model, d}

	tests := []struct {
		name     string
		seed     []entity.ID
		wantLink bool
	}{
		{"one source view", []entity.ID{va.ID()}, false},
		{"all source views", []entity.ID{va.ID(), vb.ID()}, true},
		{"target view", []entity.ID{vc.ID()}, true},
		{"presented relationship", []entity.ID{gen.ID()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := closure.Compute(reg, roots, entity.NewSet(tt.seed...))
			if got.Has(link.ID()) != tt.wantLink {
				t.Errorf("link deleted = %v, want %v (closure %v)", got.Has(link.ID()), tt.wantLink, got.Sorted())
			}
			if got.Has(model.ID()) || got.Has(d.ID()) {
				t.Error("closure reached a root")
			}
		})
	}
}

func TestSerdeRoundTrip(t *testing.T) {
	reg := registry()
	model := umlclass.NewDiagram("D")
	pkg := umlclass.NewPackage("core")
	cls := umlclass.NewClass("A")
	pkg.Add(cls)
	model.Add(pkg)

	d := views.NewDiagram(umlclass.Name, model)
	box := views.NewPackage(pkg, views.Bounds{X: 1, Y: 2, Width: 300, Height: 200})
	box.Add(views.NewElement(cls, views.Bounds{X: 5, Y: 6}))
	d.Add(box)

	rs, err := serde.Serialize(model, d)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got := len(rs.Space(entity.ViewSpace)); got != 3 {
		t.Errorf("view records = %d, want 3", got)
	}

	des := serde.NewDeserializer(reg, rs)
	got, err := serde.GetAs[*views.Diagram](des, d.ID())
	if err != nil {
		t.Fatalf("GetAs: %v", err)
	}
	if got.ViewType != umlclass.Name {
		t.Errorf("ViewType = %q", got.ViewType)
	}
	gotBox := got.Views[0].(*views.Package)
	if gotBox.Bounds != box.Bounds {
		t.Errorf("bounds = %+v, want %+v", gotBox.Bounds, box.Bounds)
	}
	inner := gotBox.Views[0].(*views.Element)
	if inner.Model().ID() != cls.ID() {
		t.Error("nested element presents the wrong class")
	}
	if gotBox.Model().(*umlclass.Package).Elements[0] != inner.Model() {
		t.Error("model graph not shared between views")
	}
}
