package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/modelgraph/pkg/notation/umlclass"
	"github.com/matzehuels/modelgraph/pkg/views"
)

func sample() (*views.Diagram, *umlclass.Class, *umlclass.Class, *umlclass.Dependency) {
	model := umlclass.NewDiagram("Shop")
	order := umlclass.NewClass("Order")
	order.Abstract = true
	customer := umlclass.NewClass("Customer")
	dep := umlclass.NewDependency(order, customer)
	model.Add(order)
	model.Add(customer)
	model.Add(dep)

	d := views.NewDiagram(umlclass.Name, model)
	d.Add(views.NewElement(order, views.Bounds{Width: 100, Height: 50}))
	return d, order, customer, dep
}

func TestToDOT(t *testing.T) {
	d, order, customer, dep := sample()
	model := d.Model()
	out := ToDOT(d, Options{})

	for _, want := range []string{
		"digraph G {",
		`"` + order.ID().Tagged() + `" [label="Order\nclass", fillcolor=white];`,
		`"` + model.ID().Tagged() + `" -> "` + order.ID().Tagged() + `" [style=solid];`,
		`"` + dep.ID().Tagged() + `" -> "` + customer.ID().Tagged() + `" [style=dashed, label="target", fontsize=10];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT lacks %q\n%s", want, out)
		}
	}
	if strings.Contains(out, d.ID().Tagged()) {
		t.Error("view tree drawn without Options.Views")
	}
}

func TestToDOTViews(t *testing.T) {
	d, order, _, _ := sample()
	out := ToDOT(d, Options{Views: true})

	el := d.Views[0]
	want := `"` + el.ID().Tagged() + `" -> "` + order.ID().Tagged() + `" [style=dotted];`
	if !strings.Contains(out, want) {
		t.Errorf("DOT lacks %q\n%s", want, out)
	}
	if !strings.Contains(out, "fillcolor=lightgrey") {
		t.Error("view nodes not shaded")
	}
}

func TestFmtLabelDetailed(t *testing.T) {
	_, order, _, _ := sample()
	got := fmtLabel(order, true)
	if got != "Order\nclass\nis_abstract: true\nname: Order" {
		t.Errorf("fmtLabel = %q", got)
	}
	if got := fmtLabel(order, false); got != "Order\nclass" {
		t.Errorf("fmtLabel = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 62.00 44.00" width="62" height="44"`)) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox was modified")
	}
}

func TestRenderSVG(t *testing.T) {
	d, _, _, _ := sample()
	svg, err := RenderSVG(context.Background(), ToDOT(d, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("</svg>")) {
		t.Errorf("not an svg document: %.200s", svg)
	}
}
