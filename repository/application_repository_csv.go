package repository

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"solar-sizer/domain"
)

// ApplicationRepositoryCSV keeps applications in a single CSV file. Reads are
// served from memory; every Save rewrites the whole file.
type ApplicationRepositoryCSV struct {
	inner *ApplicationRepositoryMemory
	path  string
	mu    sync.Mutex
}

// NewApplicationRepositoryCSV loads path, creating it with a header row when
// it does not exist.
func NewApplicationRepositoryCSV(path string) (*ApplicationRepositoryCSV, error) {
	r := &ApplicationRepositoryCSV{
		inner: NewApplicationRepositoryMemory(),
		path:  path,
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return r, r.persist(context.Background())
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	apps, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	for _, app := range apps {
		if app.Number == "" {
			continue
		}
		_ = r.inner.Save(context.Background(), app)
	}
	return r, nil
}

// Path is the CSV file backing the repository.
func (r *ApplicationRepositoryCSV) Path() string { return r.path }

func (r *ApplicationRepositoryCSV) Save(ctx context.Context, app domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, err := r.inner.Get(ctx, app.Number)
	existed := err == nil
	if err := r.inner.Save(ctx, app); err != nil {
		return err
	}
	if err := r.persist(ctx); err != nil {
		if existed {
			_ = r.inner.Save(ctx, prev)
		} else {
			r.inner.delete(app.Number)
		}
		return err
	}
	return nil
}

func (r *ApplicationRepositoryCSV) Get(ctx context.Context, number string) (domain.Application, error) {
	return r.inner.Get(ctx, number)
}

func (r *ApplicationRepositoryCSV) List(ctx context.Context) ([]domain.Application, error) {
	return r.inner.List(ctx)
}

func (r *ApplicationRepositoryCSV) persist(ctx context.Context) error {
	apps, err := r.inner.List(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, apps); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
