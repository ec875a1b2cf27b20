// Package entity provides identity, ownership and the node abstraction shared
// by every element of a modelgraph document.
//
// # Overview
//
// A document is a typed object graph. Each node carries a stable identifier,
// a kind tag, scalar attributes, owned children (the ownership forest) and
// non-owning references to other nodes. This package defines those shapes so
// the generic engines in [serde], [clone] and [closure] can walk any notation
// without knowing its concrete types.
//
// # Identifiers
//
// Every node has an [ID]: a UUIDv7 tagged with the [Space] it lives in.
// Model nodes (semantic elements) and view nodes (their diagrammatic
// presentation) live in separate spaces, so a model identifier can never be
// confused with a view identifier even if the UUIDs were equal. Typed
// wrappers [ModelID] and [ViewID] are used where only one space is valid.
//
//	id := entity.NewModelID()
//	parsed, err := entity.ParseModelID(id.String())
//
// # Handles
//
// A pointer to a node struct is its owning handle. Node types embed [Base],
// which carries the identifier and a [sync.RWMutex]. Two references point at
// the same node exactly when the pointers are equal.
//
// Accessor methods of [Node], [Container] and [Linker] do not lock. Callers
// hold the node's read lock while reading and its write lock while mutating.
//
// # Kinds
//
// A [Registry] is the closed dispatch table of kinds known at build time:
// for each [Kind] it records the identifier space, a constructor and the
// orphan rule used by cascading deletion.
//
// # Addressing
//
// [Find], [Insert], [Remove] and [Restore] address owned nodes by
// (parent, slot, index). [Remove] returns enough information to undo.
//
// [serde]: github.com/matzehuels/modelgraph/pkg/core/serde
// [clone]: github.com/matzehuels/modelgraph/pkg/core/clone
// [closure]: github.com/matzehuels/modelgraph/pkg/core/closure
package entity
