// Package closure computes cascading-delete sets.
//
// Deleting a node deletes everything it owns (ownership cascade). Deleting
// a node may also orphan relationships that reference it, such as a link
// whose endpoint disappears (reference cascade). Each kind decides when it
// is orphaned through the [entity.OrphanRule] in its registry entry. The two
// cascades feed each other, so [Compute] iterates both until nothing new is
// added.
//
// The result always contains the seed and is idempotent:
// Compute(Compute(S)) == Compute(S).
package closure

import (
	"github.com/matzehuels/modelgraph/pkg/core/entity"
)

type placed struct {
	node   entity.Node
	parent entity.ID
}

// Compute returns seed extended by every node under roots that must be
// deleted with it. Seed identifiers not found under roots are kept.
// The seed set itself is not modified.
func Compute(reg *entity.Registry, roots []entity.Node, seed entity.Set) entity.Set {
	deleting := seed.Clone()

	// Pre-order guarantees owners precede what they own.
	var nodes []placed
	for _, r := range roots {
		entity.Walk(r, func(n entity.Node, at entity.Address) bool {
			nodes = append(nodes, placed{node: n, parent: at.Parent})
			return true
		})
	}

	for {
		changed := false
		for _, p := range nodes {
			if !p.parent.IsZero() && deleting.Has(p.parent) && deleting.Add(p.node.ID()) {
				changed = true
			}
		}
		for _, p := range nodes {
			if deleting.Has(p.node.ID()) {
				continue
			}
			p.node.RLock()
			orphaned := reg.Orphaned(p.node, deleting)
			p.node.RUnlock()
			if orphaned {
				deleting.Add(p.node.ID())
				changed = true
			}
		}
		if !changed {
			return deleting
		}
	}
}
