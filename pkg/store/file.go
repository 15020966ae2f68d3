package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/project"
)

// File stores each project as <dir>/<id>.json in the editor's save format.
type File struct {
	mu     sync.RWMutex
	dir    string
	logger *log.Logger
}

// NewFile creates a file store rooted at dir, creating the directory.
func NewFile(dir string, logger *log.Logger) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &File{dir: dir, logger: logger}, nil
}

// Dir returns the directory the store writes to.
func (f *File) Dir() string { return f.dir }

func (f *File) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *File) Get(_ context.Context, id string) (*project.Project, error) {
	if err := errors.ValidateProjectID(id); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", id, err)
	}
	return project.Unmarshal(data)
}

func (f *File) Put(_ context.Context, p *project.Project) error {
	if err := errors.ValidateProjectID(p.ID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return project.Save(f.path(p.ID), p)
}

func (f *File) Delete(_ context.Context, id string) error {
	if err := errors.ValidateProjectID(id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	return err
}

// List reads every project file. Files that fail to decode are skipped with
// a warning.
func (f *File) List(context.Context) ([]project.Summary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	out := make([]project.Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := project.Load(filepath.Join(f.dir, e.Name()))
		if err != nil {
			f.logger.Warn("skipping unreadable project", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, p.Summarize())
	}
	sortSummaries(out)
	return out, nil
}

func (f *File) Close() error { return nil }
