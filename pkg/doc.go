// Package pkg provides the libraries behind modelgraph, an engine for typed
// object graphs as used by diagram modeling tools.
//
// # Overview
//
// A modelgraph project holds model graphs (classes, transactions, RDF
// resources) and diagrams, which are view graphs presenting parts of a
// model. Both are forests of nodes connected by ownership and by
// references. The pkg directory is organized into four areas:
//
//  1. [core] - The generic engine (identity, nodes, serialization, copying,
//     cascading deletion)
//  2. [notation] and [views] - The concrete node kinds
//  3. [project] - The persisted TOML document
//  4. [workspace] - Orchestration (store, cache, logging, hooks)
//
// # Architecture
//
// The typical data flow:
//
//	TOML document ([store])
//	         ↓
//	    [project] (flat records → typed node graphs)
//	         ↓
//	    [core/closure], [core/clone] (delete, duplicate)
//	         ↓
//	    [project] (typed node graphs → flat records)
//	         ↓
//	    TOML document, or an export through [render/dot]
//
// # Main Packages
//
// ## Core
//
// [core/entity] - Identifiers in two spaces (model and view), the [entity.Node]
// interface with its Container and Linker capabilities, the kind registry
// with per-kind orphan rules, and slotted addressing for undo.
//
// [core/serde] - Serializer and deserializer between node graphs and flat
// records. Shared and cyclic references are written once and resolved to
// the same instance on read.
//
// [core/clone] - Deep copy of owned subtrees with reference remapping,
// including multi-root copies with a pre-seeded mapping.
//
// [core/closure] - The cascading closure of a deletion: owned descendants
// plus every node orphaned by the removal, to a fixed point.
//
// ## Kinds
//
// [notation] - UML class diagrams, DEMO coordination structure diagrams and
// RDF graphs, and the registry covering all of them.
//
// [views] - Diagram, package box, element and link views.
//
// ## Documents and Orchestration
//
// [project] - Project hierarchy, side documents and the TOML codec.
//
// [store] - Project storage in a directory or a MongoDB collection.
//
// [cache] - Summary and export caching in files or Redis.
//
// [workspace] - The Runner used by the CLI and the HTTP server.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Coded errors with entity, kind and field context.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/core/...       # Engine only
//	go test -run Example ./...   # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/core
// [core/entity]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/core/entity
// [core/serde]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/core/serde
// [core/clone]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/core/clone
// [core/closure]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/core/closure
// [entity.Node]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/core/entity#Node
// [notation]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/notation
// [views]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/views
// [project]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/project
// [store]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/cache
// [workspace]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/workspace
// [observability]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/errors
//
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/modelgraph/pkg/render/dot
package pkg
