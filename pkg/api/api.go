// Package api serves editing sessions over HTTP for a canvas front-end.
//
// The server keeps one [editor.Editor] per open project, loaded lazily from a
// [store.Store]. Requests on one project are serialized, and every mutation
// that applies is written back to the store before the response is sent.
// Structural edits the model refuses (deleting the start scene, self-loops,
// handles past the choice list) answer 409 with code REFUSED_EDIT and leave
// the project unchanged.
//
// Errors are JSON objects:
//
//	{"code": "NO_SCENES", "message": "no valid scenes found; ..."}
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/storyweaver/pkg/buildinfo"
	"github.com/matzehuels/storyweaver/pkg/editor"
	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/project"
	"github.com/matzehuels/storyweaver/pkg/store"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

// maxBody bounds request bodies.
const maxBody = 8 << 20

// Options configures a [Server].
type Options struct {
	Layouter   layout.Layouter  // nil uses layout.Layered
	Export     wikitext.Options // Exporter options for every session
	HistoryMax int              // Undo steps per session
	Logger     *log.Logger      // nil uses log.Default()
}

// Server is the HTTP API.
type Server struct {
	store  store.Store
	opts   Options
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// session serializes requests on one project. ready is closed once the
// project has been loaded; err is set when loading failed. A session marked
// dead has been dropped from the server and must not be used.
//
// Lock order: sess.mu may be held while taking s.mu, never the reverse.
type session struct {
	ready chan struct{}
	err   error

	mu   sync.Mutex
	ed   *editor.Editor
	dead bool
}

// New creates a server backed by st.
func New(st store.Store, opts Options) *Server {
	if opts.Layouter == nil {
		opts.Layouter = &layout.Layered{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		store:    st,
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[string]*session),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(s.logRequests)
	r.Use(chimid.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/projects", func(pr chi.Router) {
			pr.Get("/", s.listProjects)
			pr.Post("/", s.createProject)

			pr.Route("/{id}", func(p chi.Router) {
				p.Get("/", s.getProject)
				p.Put("/", s.replaceProject)
				p.Delete("/", s.deleteProject)

				p.Post("/import", s.importWikitext)
				p.Get("/export", s.exportWikitext)
				p.Post("/layout", s.autoLayout)
				p.Post("/undo", s.undo)
				p.Post("/redo", s.redo)

				p.Post("/scenes", s.addScene)
				p.Patch("/scenes/{sceneID}", s.updateScene)
				p.Delete("/scenes/{sceneID}", s.deleteScene)
				p.Post("/scenes/{sceneID}/duplicate", s.duplicateScene)
				p.Post("/scenes/{sceneID}/choices", s.addChoice)
				p.Put("/scenes/{sceneID}/choices/{index}", s.setChoiceText)
				p.Delete("/scenes/{sceneID}/choices/{index}", s.deleteChoice)

				p.Post("/edges", s.connect)
				p.Delete("/edges/{sceneID}/{handle}", s.disconnect)
			})
		})

		api.Post("/wikitext/export", s.statelessExport)
		api.Post("/wikitext/import", s.statelessImport)
	})
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Sessions
// =============================================================================

// open returns the session for id, loading the project on first use.
// Concurrent first requests share one load, which runs outside s.mu.
func (s *Server) open(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{ready: make(chan struct{})}
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	if !ok {
		p, err := s.store.Get(context.WithoutCancel(ctx), id)
		if err != nil {
			sess.err = err
			s.forget(id, sess)
		} else {
			sess.ed = s.newEditor(p)
		}
		close(sess.ready)
	}

	select {
	case <-sess.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if sess.err != nil {
		return nil, sess.err
	}
	return sess, nil
}

// acquire returns the live session for id with its mutex held.
func (s *Server) acquire(ctx context.Context, id string) (*session, error) {
	for {
		sess, err := s.open(ctx, id)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		if !sess.dead {
			return sess, nil
		}
		sess.mu.Unlock()
	}
}

func (s *Server) newEditor(p *project.Project) *editor.Editor {
	return editor.New(p, editor.Options{
		Layouter:   s.opts.Layouter,
		Export:     s.opts.Export,
		HistoryMax: s.opts.HistoryMax,
		Logger:     s.logger,
	})
}

// forget removes sess from the server if it is still the session for id.
func (s *Server) forget(id string, sess *session) {
	s.mu.Lock()
	if s.sessions[id] == sess {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
}

// kill drops a session whose mutex the caller holds.
func (s *Server) kill(id string, sess *session) {
	sess.dead = true
	s.forget(id, sess)
}

// persist writes the session's project to the store. The caller holds
// sess.mu. A failed write drops the session so the next request reloads
// what the store holds.
func (s *Server) persist(ctx context.Context, sess *session) error {
	p := sess.ed.Project()
	if err := s.store.Put(ctx, p); err != nil {
		s.kill(p.ID, sess)
		return err
	}
	return nil
}
