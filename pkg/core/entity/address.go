package entity

import (
	"slices"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Address locates an owned node: the owning container, the slot and the
// position within the slot. The root of a tree has the zero Address.
type Address struct {
	Parent ID
	Slot   string
	Index  int
}

// Removed records a node taken out of the ownership tree by [Remove].
type Removed struct {
	Node    Node
	Address Address
}

// Walk visits root and its owned descendants in pre-order. If fn returns
// false the children of that node are skipped. Reference targets are not
// visited.
func Walk(root Node, fn func(n Node, at Address) bool) {
	walk(root, Address{}, fn)
}

func walk(n Node, at Address, fn func(Node, Address) bool) {
	if !fn(n, at) {
		return
	}
	c, ok := n.(Container)
	if !ok {
		return
	}
	type child struct {
		node Node
		at   Address
	}
	var children []child
	c.RLock()
	for _, slot := range c.Slots() {
		for i, ch := range c.Children(slot.Name) {
			children = append(children, child{ch, Address{Parent: c.ID(), Slot: slot.Name, Index: i}})
		}
	}
	c.RUnlock()
	for _, ch := range children {
		walk(ch.node, ch.at, fn)
	}
}

// Find returns the owned node with the given identifier and its address.
func Find(root Node, id ID) (Node, Address, bool) {
	var (
		found Node
		addr  Address
	)
	Walk(root, func(n Node, at Address) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found, addr = n, at
			return false
		}
		return true
	})
	return found, addr, found != nil
}

// Insert places n into parent's slot at index. An index outside the slot
// appends.
func Insert(parent Container, slot string, index int, n Node) error {
	parent.Lock()
	defer parent.Unlock()

	children := slices.Clone(parent.Children(slot))
	if index < 0 || index > len(children) {
		index = len(children)
	}
	children = slices.Insert(children, index, n)
	if err := parent.SetChildren(slot, children); err != nil {
		return errors.Locate(err, parent.ID().String(), string(parent.Kind()), slot)
	}
	return nil
}

// Remove detaches every owned node whose identifier is in ids from its
// owner. Descendants of a removed node leave with it and are not reported
// separately. Entries are returned in pre-order; [Restore] undoes them.
func Remove(root Node, ids Set) []Removed {
	var removed []Removed
	removeFrom(root, ids, &removed)
	return removed
}

func removeFrom(n Node, ids Set, removed *[]Removed) {
	c, ok := n.(Container)
	if !ok {
		return
	}
	var kept []Node
	c.Lock()
	for _, slot := range c.Slots() {
		children := c.Children(slot.Name)
		remaining := make([]Node, 0, len(children))
		for i, ch := range children {
			if ids.Has(ch.ID()) {
				*removed = append(*removed, Removed{
					Node:    ch,
					Address: Address{Parent: c.ID(), Slot: slot.Name, Index: i},
				})
				continue
			}
			remaining = append(remaining, ch)
		}
		if len(remaining) != len(children) {
			// Dropping children never violates a slot's kind constraints.
			_ = c.SetChildren(slot.Name, remaining)
		}
		kept = append(kept, remaining...)
	}
	c.Unlock()
	for _, ch := range kept {
		removeFrom(ch, ids, removed)
	}
}

// Restore reinserts nodes detached by [Remove] at their original addresses.
// Entries must be in the order Remove returned them; within a slot,
// ascending original positions rebuild the original sequence.
func Restore(root Node, removed []Removed) error {
	for _, r := range removed {
		parent, _, ok := Find(root, r.Address.Parent)
		if !ok {
			return errors.UnknownIdentifier(r.Address.Parent.String())
		}
		c, ok := parent.(Container)
		if !ok {
			return errors.Structure("owner is not a container").At(parent.ID().String(), string(parent.Kind()))
		}
		if err := Insert(c, r.Address.Slot, r.Address.Index, r.Node); err != nil {
			return err
		}
	}
	return nil
}
