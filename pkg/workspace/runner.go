package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/notation"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/project"
	"github.com/matzehuels/modelgraph/pkg/store"
	"github.com/matzehuels/modelgraph/pkg/views"
)

// Runner executes project operations with caching and logging. It holds no
// project state between calls, so one Runner may serve many goroutines.
type Runner struct {
	Store    store.Store
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Registry *entity.Registry

	locks sync.Map // project name -> *sync.Mutex
}

// NewRunner creates a runner over st.
// If c is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
// If logger is nil, log.Default() is used.
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    st,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Registry: notation.Registry(),
	}
}

// Close releases the store and the cache.
func (r *Runner) Close() error {
	serr := r.Store.Close()
	cerr := r.Cache.Close()
	if serr != nil {
		return serr
	}
	return cerr
}

func (r *Runner) lock(name string) func() {
	mu, _ := r.locks.LoadOrStore(name, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// =============================================================================
// Load and Save
// =============================================================================

// Open loads and decodes the named project.
func (r *Runner) Open(ctx context.Context, name string) (*project.Project, error) {
	p, _, err := r.open(ctx, name)
	return p, err
}

func (r *Runner) open(ctx context.Context, name string) (*project.Project, []byte, error) {
	data, err := r.Store.Load(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	p, err := r.Decode(ctx, name, data)
	if err != nil {
		return nil, nil, err
	}
	return p, data, nil
}

// Decode decodes a document that did not come from the store.
func (r *Runner) Decode(ctx context.Context, name string, data []byte) (*project.Project, error) {
	start := time.Now()
	p, err := project.Unmarshal(data, r.Registry)
	records := 0
	if p != nil {
		records = countNodes(p)
	}
	observability.Workspace().OnLoad(ctx, name, records, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded project",
		"name", name,
		"diagrams", len(p.Diagrams()),
		"nodes", records,
		"duration", time.Since(start))
	if len(p.Unreferenced) > 0 {
		r.Logger.Warn("dropping unreferenced records on next save",
			"name", name,
			"count", len(p.Unreferenced))
	}
	for _, ig := range p.Ignored {
		r.Logger.Warn("ignoring unknown key",
			"name", name,
			"entity", ig.ID.Tagged(),
			"kind", ig.Kind,
			"key", ig.Key)
	}
	return p, nil
}

// Save encodes p and stores it under its name.
func (r *Runner) Save(ctx context.Context, p *project.Project) error {
	start := time.Now()
	data, err := project.Marshal(p)
	if err == nil {
		err = r.Store.Save(ctx, p.Name, data)
	}
	observability.Workspace().OnSave(ctx, p.Name, len(data), time.Since(start), err)
	if err != nil {
		return err
	}
	r.Logger.Debug("saved project", "name", p.Name, "bytes", len(data), "duration", time.Since(start))
	return nil
}

// =============================================================================
// Operations
// =============================================================================

// Create makes a new project holding one empty diagram of the given
// notation. It fails if the project exists.
func (r *Runner) Create(ctx context.Context, name, notationName, diagramName string) (*project.Project, error) {
	n, err := notation.Lookup(notationName)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateProjectName(name); err != nil {
		return nil, err
	}
	defer r.lock(name)()

	if _, err := r.Store.Load(ctx, name); err == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "project %q already exists", name)
	} else if !errors.Is(err, errors.ErrCodeProjectNotFound) {
		return nil, err
	}

	if diagramName == "" {
		diagramName = "New diagram"
	}
	if err := errors.ValidateDisplayName("diagram", diagramName); err != nil {
		return nil, err
	}
	p := project.New(r.Registry, name)
	p.AddDiagram(n.NewModel(diagramName), n.Name)
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}
	r.Logger.Info("created project", "name", name, "notation", n.Name)
	return p, nil
}

// Closure returns what deleting ids from the named project would remove.
// The project is not modified.
func (r *Runner) Closure(ctx context.Context, name string, ids []entity.ID) (entity.Set, error) {
	p, err := r.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := requireNodes(p, ids); err != nil {
		return nil, err
	}
	return p.Closure(entity.NewSet(ids...)), nil
}

// Delete removes ids and everything that cascades from them, then saves.
func (r *Runner) Delete(ctx context.Context, name string, ids []entity.ID) (*project.Deletion, error) {
	var del *project.Deletion
	err := r.mutate(ctx, "delete", name, func(p *project.Project) (int, error) {
		if err := requireNodes(p, ids); err != nil {
			return 0, err
		}
		del = p.Delete(entity.NewSet(ids...))
		return len(del.IDs), nil
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Info("deleted elements", "name", name, "seed", len(ids), "removed", len(del.IDs))
	return del, nil
}

// PreviewDelete reports what Delete would remove, including whole
// diagrams, without saving. The deletion is applied to the loaded project
// and then undone.
func (r *Runner) PreviewDelete(ctx context.Context, name string, ids []entity.ID) (*project.Deletion, error) {
	p, err := r.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := requireNodes(p, ids); err != nil {
		return nil, err
	}
	del := p.Delete(entity.NewSet(ids...))
	if err := p.Restore(del); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "undo preview deletion")
	}
	return del, nil
}

// Duplicate copies a diagram and saves. A shallow copy presents the
// original model; a deep copy gets its own.
func (r *Runner) Duplicate(ctx context.Context, name string, id entity.ViewID, shallow bool) (*views.Diagram, error) {
	var cp *views.Diagram
	err := r.mutate(ctx, "duplicate", name, func(p *project.Project) (int, error) {
		d, err := p.Duplicate(id, shallow)
		if err != nil {
			return 0, err
		}
		cp = d
		return countTree(d), nil
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Info("duplicated diagram",
		"name", name,
		"source", id,
		"copy", cp.ID(),
		"shallow", shallow)
	return cp, nil
}

// mutate loads, edits and saves a project under its lock.
func (r *Runner) mutate(ctx context.Context, op, name string, fn func(*project.Project) (int, error)) (err error) {
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}
	defer r.lock(name)()

	start := time.Now()
	affected := 0
	observability.Workspace().OnOperationStart(ctx, op, name)
	defer func() {
		observability.Workspace().OnOperationComplete(ctx, op, name, affected, time.Since(start), err)
	}()

	p, err := r.Open(ctx, name)
	if err != nil {
		return err
	}
	if affected, err = fn(p); err != nil {
		return err
	}
	return r.Save(ctx, p)
}

// requireNodes fails with UNKNOWN_IDENTIFIER for the first id not in p.
func requireNodes(p *project.Project, ids []entity.ID) error {
	if len(ids) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no elements given")
	}
	for _, id := range ids {
		if _, _, ok := p.Find(id); !ok {
			return errors.UnknownIdentifier(id.Tagged())
		}
	}
	return nil
}

func countTree(root entity.Node) int {
	n := 0
	entity.Walk(root, func(entity.Node, entity.Address) bool {
		n++
		return true
	})
	return n
}

func countNodes(p *project.Project) int {
	n := 0
	for _, root := range p.Roots() {
		n += countTree(root)
	}
	return n
}
