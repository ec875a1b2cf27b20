// Package store persists modelgraph project documents by name.
//
// A store deals in encoded documents (see [project.Marshal]) and knows
// nothing about their content. Two backends exist:
//
//   - [FileStore]: one "<name>.toml" file per project in a directory (CLI)
//   - [MongoStore]: one document per project in a MongoDB collection (API)
//
// Project names are validated with [errors.ValidateProjectName] before they
// reach a backend, so they are always safe as file names and document keys.
//
// Stores do not lock across processes. A project is expected to have a
// single writer at a time.
//
// [project.Marshal]: github.com/matzehuels/modelgraph/pkg/project.Marshal
package store

import (
	"context"
	"time"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Store loads and saves encoded project documents.
type Store interface {
	// Load returns the document saved under name. A missing project is a
	// PROJECT_NOT_FOUND error.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the document saved under name.
	Save(ctx context.Context, name string, data []byte) error
	// List returns the stored project names in sorted order.
	List(ctx context.Context) ([]Info, error)
	// Delete removes the project. A missing project is a PROJECT_NOT_FOUND
	// error.
	Delete(ctx context.Context, name string) error
	// Close releases the backend.
	Close() error
}

// Info describes a stored project.
type Info struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeProjectNotFound, "project %q not found", name)
}
