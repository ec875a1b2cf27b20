package entity

import "github.com/matzehuels/modelgraph/pkg/errors"

// Helpers for SetChildren and SetRefs implementations. They check target
// count and type and report STRUCTURE_ERROR with the field name.

// Single returns the only node in nodes as T.
func Single[T Node](field string, nodes []Node) (T, error) {
	var zero T
	if len(nodes) != 1 {
		return zero, errors.Structure("field holds %d elements, want exactly one", len(nodes)).InField(field)
	}
	t, ok := nodes[0].(T)
	if !ok {
		return zero, unexpected(field, nodes[0])
	}
	return t, nil
}

// Optional returns the node in nodes as T, or the zero T when nodes is empty.
func Optional[T Node](field string, nodes []Node) (T, error) {
	var zero T
	if len(nodes) == 0 {
		return zero, nil
	}
	return Single[T](field, nodes)
}

// List converts every node to T.
func List[T Node](field string, nodes []Node) ([]T, error) {
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		t, ok := n.(T)
		if !ok {
			return nil, unexpected(field, n)
		}
		out = append(out, t)
	}
	return out, nil
}

// Nodes widens a typed slice.
func Nodes[T Node](ts []T) []Node {
	out := make([]Node, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

func unexpected(field string, n Node) error {
	return errors.Structure("element has unexpected type %s", n.Kind()).InField(field)
}
