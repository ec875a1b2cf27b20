package workspace

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/notation/umlclass"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/project"
	"github.com/matzehuels/modelgraph/pkg/store"
	"github.com/matzehuels/modelgraph/pkg/views"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(st, c, nil, log.New(io.Discard))
	t.Cleanup(func() { r.Close() })
	return r
}

type fixture struct {
	diagram  entity.ViewID
	order    *umlclass.Class
	customer *umlclass.Class
	places   *umlclass.Association
}

// seed saves a project "shop" with two classes and an association.
func seed(t *testing.T, r *Runner) fixture {
	t.Helper()
	p := project.New(r.Registry, "shop")
	model := umlclass.NewDiagram("Shop")
	f := fixture{
		order:    umlclass.NewClass("Order"),
		customer: umlclass.NewClass("Customer"),
	}
	f.places = umlclass.NewAssociation(f.customer, f.order)
	model.Add(f.order)
	model.Add(f.customer)
	model.Add(f.places)

	d := p.AddDiagram(model, umlclass.Name)
	vo := views.NewElement(f.order, views.Bounds{Width: 100, Height: 40})
	vc := views.NewElement(f.customer, views.Bounds{X: 200, Width: 100, Height: 40})
	d.Add(vo)
	d.Add(vc)
	d.Add(views.NewLink(f.places, []views.View{vc}, []views.View{vo}))
	f.diagram, _ = d.ID().ViewID()

	if err := r.Save(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)

	p, err := r.Create(ctx, "blank", umlclass.Name, "Domain")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(p.Diagrams()) != 1 || project.DiagramName(p.Diagrams()[0]) != "Domain" {
		t.Errorf("created diagrams = %v", p.Diagrams())
	}

	if _, err := r.Create(ctx, "blank", umlclass.Name, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second Create err = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Create(ctx, "other", "bpmn", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown notation err = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Create(ctx, "../x", umlclass.Name, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad name err = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Create(ctx, "other", umlclass.Name, "a\tb"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad diagram name err = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Store.Load(ctx, "other"); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("failed Create stored a project: %v", err)
	}
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	f := seed(t, r)

	s, err := r.Inspect(ctx, "shop")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if s.Name != "shop" || s.FormatVersion != project.FormatVersion {
		t.Errorf("header = %q %q", s.Name, s.FormatVersion)
	}
	if len(s.Diagrams) != 1 {
		t.Fatalf("diagrams = %+v", s.Diagrams)
	}
	d := s.Diagrams[0]
	if d.ID != f.diagram.String() || d.Name != "Shop" || d.ModelNodes != 4 || d.ViewNodes != 4 {
		t.Errorf("diagram summary = %+v", d)
	}
	if s.ModelRecords != 4 || s.ViewRecords != 4 {
		t.Errorf("records = %d/%d, want 4/4", s.ModelRecords, s.ViewRecords)
	}
	if len(s.Hierarchy) != 1 || s.Hierarchy[0].Name != "Shop" {
		t.Errorf("hierarchy = %+v", s.Hierarchy)
	}

	if _, err := r.Inspect(ctx, "nope"); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("missing project err = %v", err)
	}
}

type countingCache struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func (c *countingCache) OnCacheHit(_ context.Context, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[kind]++
}

func (c *countingCache) OnCacheMiss(_ context.Context, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses[kind]++
}

func TestCaching(t *testing.T) {
	ctx := context.Background()
	hooks := &countingCache{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	r := newRunner(t)
	f := seed(t, r)

	for range 2 {
		if _, err := r.Inspect(ctx, "shop"); err != nil {
			t.Fatal(err)
		}
		if _, err := r.Export(ctx, "shop", f.diagram, ExportOptions{Format: FormatDOT}); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.misses["summary"] != 1 || hooks.hits["summary"] != 1 {
		t.Errorf("summary hits/misses = %d/%d", hooks.hits["summary"], hooks.misses["summary"])
	}
	if hooks.misses["artifact"] != 1 || hooks.hits["artifact"] != 1 {
		t.Errorf("artifact hits/misses = %d/%d", hooks.hits["artifact"], hooks.misses["artifact"])
	}

	// A changed document gets fresh entries.
	if _, err := r.Duplicate(ctx, "shop", f.diagram, true); err != nil {
		t.Fatal(err)
	}
	s, err := r.Inspect(ctx, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Diagrams) != 2 || hooks.misses["summary"] != 2 {
		t.Errorf("stale summary: %d diagrams, %d misses", len(s.Diagrams), hooks.misses["summary"])
	}
}

func TestClosureDoesNotModify(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	f := seed(t, r)
	before, _ := r.Store.Load(ctx, "shop")

	got, err := r.Closure(ctx, "shop", []entity.ID{f.customer.ID()})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	// customer, association, customer view, link view
	if len(got) != 4 || !got.Has(f.places.ID()) {
		t.Errorf("closure = %v", got.Sorted())
	}

	after, _ := r.Store.Load(ctx, "shop")
	if string(before) != string(after) {
		t.Error("Closure changed the stored project")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	f := seed(t, r)

	del, err := r.Delete(ctx, "shop", []entity.ID{f.customer.ID()})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(del.IDs) != 4 {
		t.Errorf("removed %d, want 4", len(del.IDs))
	}

	p, err := r.Open(ctx, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := p.Find(f.customer.ID()); ok {
		t.Error("customer still stored")
	}
	if _, _, ok := p.Find(f.order.ID()); !ok {
		t.Error("order was removed")
	}
}

func TestDeleteUnknownLeavesProject(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	seed(t, r)
	before, _ := r.Store.Load(ctx, "shop")

	_, err := r.Delete(ctx, "shop", []entity.ID{entity.New(entity.ModelSpace)})
	if !errors.Is(err, errors.ErrCodeUnknownIdentifier) {
		t.Errorf("err = %v, want UNKNOWN_IDENTIFIER", err)
	}
	if _, err := r.Delete(ctx, "shop", nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty seed err = %v, want INVALID_INPUT", err)
	}

	after, _ := r.Store.Load(ctx, "shop")
	if string(before) != string(after) {
		t.Error("failed Delete changed the stored project")
	}
}

func TestPreviewDelete(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	f := seed(t, r)
	before, _ := r.Store.Load(ctx, "shop")

	tests := []struct {
		name         string
		seed         entity.ID
		wantIDs      int
		wantDiagrams int
	}{
		{"class", f.customer.ID(), 4, 0},
		{"diagram", f.diagram.ID(), 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			del, err := r.PreviewDelete(ctx, "shop", []entity.ID{tt.seed})
			if err != nil {
				t.Fatalf("PreviewDelete: %v", err)
			}
			if len(del.IDs) != tt.wantIDs {
				t.Errorf("would remove %d, want %d", len(del.IDs), tt.wantIDs)
			}
			if got := len(del.Diagrams()); got != tt.wantDiagrams {
				t.Errorf("would remove %d diagrams, want %d", got, tt.wantDiagrams)
			}
		})
	}

	after, _ := r.Store.Load(ctx, "shop")
	if string(before) != string(after) {
		t.Error("PreviewDelete changed the stored project")
	}
	p, err := r.Open(ctx, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := p.Find(f.customer.ID()); !ok {
		t.Error("customer gone after preview")
	}
	if _, ok := p.Diagram(f.diagram); !ok {
		t.Error("diagram gone after preview")
	}
}

func TestDecodeWarnsOnUnknownKeys(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	seed(t, r)
	data, err := r.Store.Load(ctx, "shop")
	if err != nil {
		t.Fatal(err)
	}
	data = []byte(strings.Replace(string(data), `name = "Order"`, "name = \"Order\"\ncolour = \"red\"", 1))

	var buf bytes.Buffer
	r.Logger = log.New(&buf)
	p, err := r.Decode(ctx, "shop", data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(p.Ignored) != 1 {
		t.Fatalf("Ignored = %+v", p.Ignored)
	}
	out := buf.String()
	if !strings.Contains(out, "ignoring unknown key") || !strings.Contains(out, "colour") {
		t.Errorf("log output = %q", out)
	}
}

func TestDuplicateConcurrent(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	f := seed(t, r)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Duplicate(ctx, "shop", f.diagram, false); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	p, err := r.Open(ctx, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(p.Diagrams()); n != 6 {
		t.Errorf("got %d diagrams, want 6", n)
	}
	if p.NewDiagramCounter != 6 {
		t.Errorf("NewDiagramCounter = %d, want 6", p.NewDiagramCounter)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	f := seed(t, r)

	tests := []struct {
		name    string
		format  string
		want    string
		code    errors.Code
		diagram entity.ViewID
	}{
		{name: "dot", format: FormatDOT, want: "digraph G {", diagram: f.diagram},
		{name: "plantuml", format: FormatPlantUML, want: "@startuml", diagram: f.diagram},
		{name: "nquads on uml", format: FormatNQuads, code: errors.ErrCodeUnsupported, diagram: f.diagram},
		{name: "bad format", format: "pdf", code: errors.ErrCodeInvalidInput, diagram: f.diagram},
		{name: "unknown diagram", format: FormatDOT, code: errors.ErrCodeNotFound, diagram: entity.NewViewID()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Export(ctx, "shop", tt.diagram, ExportOptions{Format: tt.format})
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(out), tt.want) {
				t.Errorf("output lacks %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range Formats {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	for _, f := range []string{"", "SVG", "png"} {
		if ValidateFormat(f) == nil {
			t.Errorf("ValidateFormat(%q) accepted", f)
		}
	}
}
