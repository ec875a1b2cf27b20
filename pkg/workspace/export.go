package workspace

import (
	"context"
	"time"

	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/notation/rdf"
	"github.com/matzehuels/modelgraph/pkg/notation/umlclass"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/render/dot"
	"github.com/matzehuels/modelgraph/pkg/views"
)

// ExportOptions selects an export format.
type ExportOptions struct {
	Format string
	// Detailed adds attributes to DOT and SVG node labels.
	Detailed bool
	// Views includes the view tree in DOT and SVG output.
	Views bool
}

// Export renders one diagram of the named project.
func (r *Runner) Export(ctx context.Context, name string, id entity.ViewID, opts ExportOptions) ([]byte, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "export")
	}
	data, err := r.Store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.ArtifactKey(cache.Hash(data), cache.ArtifactKeyOpts{
		Diagram:  id.String(),
		Format:   opts.Format,
		Detailed: opts.Detailed,
		Views:    opts.Views,
	})
	if out, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return out, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	p, err := r.Decode(ctx, name, data)
	if err != nil {
		return nil, err
	}
	d, ok := p.Diagram(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "diagram %s not found", id)
	}

	start := time.Now()
	out, err := ExportDiagram(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("exported diagram", "diagram", id, "format", opts.Format, "bytes", len(out), "duration", time.Since(start))

	if err := r.Cache.Set(ctx, key, out, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	}
	return out, nil
}

// ExportDiagram renders d without touching store or cache.
func ExportDiagram(ctx context.Context, d *views.Diagram, opts ExportOptions) ([]byte, error) {
	d.RLock()
	model := d.Model()
	d.RUnlock()

	switch opts.Format {
	case FormatDOT:
		return []byte(dot.ToDOT(d, dot.Options{Detailed: opts.Detailed, Views: opts.Views})), nil
	case FormatSVG:
		svg, err := dot.RenderSVG(ctx, dot.ToDOT(d, dot.Options{Detailed: opts.Detailed, Views: opts.Views}))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	case FormatPlantUML:
		m, ok := model.(*umlclass.Diagram)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "plantuml export needs a %s diagram, got %s", umlclass.Name, model.Kind())
		}
		return []byte(m.PlantUML()), nil
	case FormatNQuads:
		m, ok := model.(*rdf.Diagram)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "nquads export needs an %s diagram, got %s", rdf.Name, model.Kind())
		}
		return []byte(m.NQuads()), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q", opts.Format)
}
