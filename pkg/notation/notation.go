// Package notation lists the diagram notations modelgraph knows and builds
// the kind registry covering all of them.
//
// Each notation contributes model kinds (see the umlclass, democsd and rdf
// subpackages); the notation-independent view kinds come from
// [views.Register]. The set is closed at build time.
package notation

import (
	"slices"
	"sync"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/notation/democsd"
	"github.com/matzehuels/modelgraph/pkg/notation/rdf"
	"github.com/matzehuels/modelgraph/pkg/notation/umlclass"
	"github.com/matzehuels/modelgraph/pkg/views"
)

// Notation describes one diagram type.
type Notation struct {
	Name     string // view type tag, e.g. "umlclass"
	Title    string // human-readable name
	Register func(*entity.Registry)
	// NewModel returns an empty model root named name.
	NewModel func(name string) entity.Container
}

var notations = []Notation{
	{
		Name:     umlclass.Name,
		Title:    "UML class diagram",
		Register: umlclass.Register,
		NewModel: func(name string) entity.Container { return umlclass.NewDiagram(name) },
	},
	{
		Name:     democsd.Name,
		Title:    "DEMO coordination structure diagram",
		Register: democsd.Register,
		NewModel: func(name string) entity.Container { return democsd.NewDiagram(name) },
	},
	{
		Name:     rdf.Name,
		Title:    "RDF graph diagram",
		Register: rdf.Register,
		NewModel: func(name string) entity.Container { return rdf.NewDiagram(name) },
	},
}

// All returns every notation.
func All() []Notation { return slices.Clone(notations) }

// Names returns the notation names.
func Names() []string {
	out := make([]string, len(notations))
	for i, n := range notations {
		out[i] = n.Name
	}
	return out
}

// Lookup returns the notation called name.
func Lookup(name string) (Notation, error) {
	for _, n := range notations {
		if n.Name == name {
			return n, nil
		}
	}
	return Notation{}, errors.New(errors.ErrCodeInvalidInput, "unknown notation %q (available: %v)", name, Names())
}

// Registry returns the shared registry holding every notation's kinds and
// the view kinds.
var Registry = sync.OnceValue(func() *entity.Registry {
	r := entity.NewRegistry()
	for _, n := range notations {
		n.Register(r)
	}
	views.Register(r)
	return r
})
