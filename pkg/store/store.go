// Package store persists projects.
//
// Four backends implement [Store]:
//   - [Memory]: in-process map for tests and the ephemeral server
//   - [File]: one JSON project file per project in a directory (CLI default)
//   - [Redis]: one key per project plus an index set, for shared servers
//   - [Mongo]: one document per project
//
// Every backend stores the same project document (see package project), so
// projects can be moved between backends with "storyweaver store push/pull".
// All backends are safe for concurrent use.
//
//	s, err := store.Open(ctx, cfg.Store, logger)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	p, err := s.Get(ctx, id)
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyweaver/pkg/config"
	swerrors "github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/observability"
	"github.com/matzehuels/storyweaver/pkg/project"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("project not found")

// Store is the interface for project storage backends.
type Store interface {
	// Get returns the project with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*project.Project, error)

	// Put creates or replaces a project. The project ID must pass
	// errors.ValidateProjectID.
	Put(ctx context.Context, p *project.Project) error

	// Delete removes a project, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns all project summaries, most recently updated first.
	List(ctx context.Context) ([]project.Summary, error)

	// Close releases backend connections.
	Close() error
}

// Open creates the backend selected by cfg. The returned store reports every
// call to the registered observability hooks and logs it at debug level.
func Open(ctx context.Context, cfg config.Store, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.Default()
	}

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemory()
	case config.BackendFile, "":
		s, err = NewFile(cfg.Dir, logger)
	case config.BackendRedis:
		s, err = NewRedis(ctx, RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case config.BackendMongo:
		s, err = NewMongo(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	default:
		return nil, swerrors.New(swerrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = config.BackendFile
	}
	return Instrument(s, backend, logger), nil
}

// Instrument wraps s so every call is reported to observability.Store() and
// logged at debug level.
func Instrument(s Store, backend string, logger *log.Logger) Store {
	if logger == nil {
		logger = log.Default()
	}
	return &instrumented{next: s, backend: backend, logger: logger}
}

type instrumented struct {
	next    Store
	backend string
	logger  *log.Logger
}

func (s *instrumented) observe(ctx context.Context, op, id string, start time.Time, err error) {
	d := time.Since(start)
	observability.Store().OnStoreOp(ctx, s.backend, op, d, err)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("store operation failed", "backend", s.backend, "op", op, "id", id, "error", err)
		return
	}
	s.logger.Debug("store", "backend", s.backend, "op", op, "id", id, "duration", d)
}

func (s *instrumented) Get(ctx context.Context, id string) (*project.Project, error) {
	start := time.Now()
	p, err := s.next.Get(ctx, id)
	s.observe(ctx, "get", id, start, err)
	return p, err
}

func (s *instrumented) Put(ctx context.Context, p *project.Project) error {
	start := time.Now()
	err := s.next.Put(ctx, p)
	s.observe(ctx, "put", p.ID, start, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.observe(ctx, "delete", id, start, err)
	return err
}

func (s *instrumented) List(ctx context.Context) ([]project.Summary, error) {
	start := time.Now()
	out, err := s.next.List(ctx)
	s.observe(ctx, "list", "", start, err)
	return out, err
}

func (s *instrumented) Close() error { return s.next.Close() }

// =============================================================================
// Helpers
// =============================================================================

func sortSummaries(out []project.Summary) {
	slices.SortFunc(out, func(a, b project.Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
