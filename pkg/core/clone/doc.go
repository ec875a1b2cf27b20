// Package clone deep-copies ownership subtrees and rewrites references
// between the copies.
//
// # Overview
//
// Copying is two-phase. [Copier.Walk] traverses ownership only: every owned
// node gets a fresh identifier, its attributes are copied and its references
// are copied as-is, still pointing at originals. [Copier.Relink] then
// rewrites each reference whose target was copied so that it points at the
// copy. References leaving the copied region keep pointing at the original
// node.
//
//	cp, mapping, err := clone.DeepCopy(registry, diagram)
//
// A [Copier] may be seeded with an existing [Mapping] so that a second copy
// relinks to nodes produced by a first one. Duplicating a diagram copies the
// model tree first and then the view tree seeded with the model mapping, so
// the copied views present the copied models.
package clone
