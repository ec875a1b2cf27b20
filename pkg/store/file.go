package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Extension is the file extension of project documents in a [FileStore].
const Extension = ".toml"

// FileStore keeps each project in "<dir>/<name>.toml".
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed and returns a store in it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create project directory")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the project directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file holding the named project.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+Extension)
}

// Load implements [Store].
func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateProjectName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read project %q", name)
	}
	return data, nil
}

// Save implements [Store]. The document is written next to the target and
// renamed over it.
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save project %q", name)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStorage, firstErr(werr, cerr), "save project %q", name)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStorage, err, "save project %q", name)
	}
	return nil
}

// List implements [Store].
func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list projects")
	}
	var out []Info
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), Extension)
		if !ok || e.IsDir() || errors.ValidateProjectName(name) != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: name, Size: fi.Size(), UpdatedAt: fi.ModTime()})
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Delete implements [Store].
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete project %q", name)
	}
	return nil
}

// Close implements [Store].
func (s *FileStore) Close() error { return nil }

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var _ Store = (*FileStore)(nil)
