package workspace

import (
	"context"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
)

// EntityInfo is a node with its links flattened to tagged identifiers.
type EntityInfo struct {
	ID     string              `json:"id"`
	Kind   string              `json:"kind"`
	Attrs  entity.Attrs        `json:"attrs"`
	Owned  map[string][]string `json:"owned,omitempty"`
	Refs   map[string][]string `json:"refs,omitempty"`
	Parent string              `json:"parent,omitempty"`
	Slot   string              `json:"slot,omitempty"`
	Index  int                 `json:"index"`
}

// Describe flattens n, located at at.
func Describe(n entity.Node, at entity.Address) EntityInfo {
	n.RLock()
	defer n.RUnlock()

	info := EntityInfo{
		ID:    n.ID().Tagged(),
		Kind:  string(n.Kind()),
		Attrs: n.Attrs(),
		Slot:  at.Slot,
		Index: at.Index,
	}
	if !at.Parent.IsZero() {
		info.Parent = at.Parent.Tagged()
	}
	if c, ok := n.(entity.Container); ok {
		info.Owned = make(map[string][]string)
		for _, f := range c.Slots() {
			info.Owned[f.Name] = tagged(c.Children(f.Name))
		}
	}
	if l, ok := n.(entity.Linker); ok {
		info.Refs = make(map[string][]string)
		for _, f := range l.RefFields() {
			info.Refs[f.Name] = tagged(l.Refs(f.Name))
		}
	}
	return info
}

func tagged(nodes []entity.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID().Tagged()
	}
	return out
}

// Entity describes the node with the given id in the named project.
func (r *Runner) Entity(ctx context.Context, name string, id entity.ID) (*EntityInfo, error) {
	p, err := r.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	n, at, ok := p.Find(id)
	if !ok {
		return nil, errors.UnknownIdentifier(id.Tagged())
	}
	info := Describe(n, at)
	return &info, nil
}
