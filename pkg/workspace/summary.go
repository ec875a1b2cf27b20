package workspace

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/core/serde"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/project"
)

// Summary describes a project without its content.
type Summary struct {
	Name              string            `json:"name"`
	FormatVersion     string            `json:"format_version"`
	NewDiagramCounter int64             `json:"new_diagram_counter"`
	Hierarchy         []EntrySummary    `json:"hierarchy"`
	Diagrams          []DiagramSummary  `json:"diagrams"`
	Documents         []DocumentSummary `json:"documents"`
	ModelRecords      int               `json:"model_records"`
	ViewRecords       int               `json:"view_records"`
	Unreferenced      int               `json:"unreferenced"`
	IgnoredKeys       []string          `json:"ignored_keys,omitempty"`
}

// EntrySummary is one line of the hierarchy tree.
type EntrySummary struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// DiagramSummary describes one diagram.
type DiagramSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ViewType   string `json:"view_type"`
	Model      string `json:"model"`
	ModelNodes int    `json:"model_nodes"`
	ViewNodes  int    `json:"view_nodes"`
}

// DocumentSummary describes one side document.
type DocumentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Summarize describes p.
func Summarize(p *project.Project) (*Summary, error) {
	rs, err := serde.Serialize(p.Roots()...)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		Name:              p.Name,
		FormatVersion:     project.FormatVersion,
		NewDiagramCounter: p.NewDiagramCounter,
		ModelRecords:      len(rs.Space(entity.ModelSpace)),
		ViewRecords:       len(rs.Space(entity.ViewSpace)),
		Unreferenced:      len(p.Unreferenced),
		Hierarchy:         []EntrySummary{},
		Diagrams:          []DiagramSummary{},
		Documents:         []DocumentSummary{},
	}

	for _, ig := range p.Ignored {
		s.IgnoredKeys = append(s.IgnoredKeys, ig.ID.Tagged()+"."+ig.Key)
	}

	p.Walk(func(e *project.Entry, depth int) {
		es := EntrySummary{Type: string(e.Type), ID: e.ID.String(), Name: e.Name, Depth: depth}
		if e.Type == project.EntryDiagram {
			if d, ok := p.Diagram(e.ID); ok {
				es.Name = project.DiagramName(d)
			}
		}
		s.Hierarchy = append(s.Hierarchy, es)
	})
	for _, d := range p.Diagrams() {
		d.RLock()
		model, viewType := d.Model(), d.ViewType
		d.RUnlock()
		s.Diagrams = append(s.Diagrams, DiagramSummary{
			ID:         d.ID().String(),
			Name:       project.DiagramName(d),
			ViewType:   viewType,
			Model:      model.ID().String(),
			ModelNodes: countTree(model),
			ViewNodes:  countTree(d),
		})
	}
	for _, doc := range p.Documents() {
		s.Documents = append(s.Documents, DocumentSummary{ID: doc.ID.String(), Name: doc.Name, Size: len(doc.Content)})
	}
	return s, nil
}

// Inspect returns the summary of the named project, computing it only when
// the stored document changed since the last call.
func (r *Runner) Inspect(ctx context.Context, name string) (*Summary, error) {
	data, err := r.Store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.SummaryKey(cache.Hash(data))

	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var s Summary
		if err := json.Unmarshal(cached, &s); err == nil {
			observability.Cache().OnCacheHit(ctx, "summary")
			return &s, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "summary")

	p, err := r.Decode(ctx, name, data)
	if err != nil {
		return nil, err
	}
	s, err := Summarize(p)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(s); err == nil {
		if err := r.Cache.Set(ctx, key, raw, cache.TTLSummary); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "summary", len(raw))
		}
	}
	return s, nil
}
