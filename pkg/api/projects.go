package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/storyweaver/pkg/editor"
	swerrors "github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/project"
	"github.com/matzehuels/storyweaver/pkg/store"
	"github.com/matzehuels/storyweaver/pkg/story"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

// editResponse is returned by every mutating project endpoint.
type editResponse struct {
	Project project.Document `json:"project"`
	Scene   *project.Node    `json:"scene,omitempty"`
	Index   *int             `json:"index,omitempty"`
	Report  *wikitext.Report `json:"report,omitempty"`
	CanUndo bool             `json:"canUndo"`
	CanRedo bool             `json:"canRedo"`
}

func respond(ed *editor.Editor) *editResponse {
	return &editResponse{
		Project: ed.Project().Document(),
		CanUndo: ed.CanUndo(),
		CanRedo: ed.CanRedo(),
	}
}

// withScene attaches the canvas node for sceneID.
func (e *editResponse) withScene(sceneID string) *editResponse {
	for i := range e.Project.Nodes {
		if e.Project.Nodes[i].ID == sceneID {
			e.Scene = &e.Project.Nodes[i]
			break
		}
	}
	return e
}

// edit runs fn on the project named in the URL while holding its session,
// persists when fn reports a change and writes the response.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, status int, fn func(ed *editor.Editor) (*editResponse, bool, error)) {
	ctx := r.Context()
	sess, err := s.acquire(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer sess.mu.Unlock()

	resp, changed, err := fn(sess.ed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if changed {
		if err := s.persist(ctx, sess); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// Projects
// =============================================================================

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []project.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Sample bool   `json:"sample"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		req.Name = "Untitled"
	}
	if err := swerrors.ValidateProjectName(req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	p := project.New(req.Name)
	if req.Sample {
		p = project.Sample(req.Name)
	}
	if err := s.store.Put(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p.Document())
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		return respond(ed), false, nil
	})
}

// replaceProject stores a full document under the URL's ID, as a canvas
// save does. The session history starts over.
func (s *Server) replaceProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := project.Unmarshal(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p.ID = id
	p.Touch()

	// An unknown ID creates the project; the next request loads it.
	sess, err := s.acquire(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		sess = nil
	case err != nil:
		s.writeError(w, r, err)
		return
	default:
		defer sess.mu.Unlock()
	}

	if err := s.store.Put(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if sess != nil {
		sess.ed.LoadProject(p.Clone())
	}

	writeJSON(w, http.StatusOK, p.Document())
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer sess.mu.Unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.kill(id, sess)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Wikitext and layout
// =============================================================================

func (s *Server) importWikitext(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		report, err := ed.ImportWikitext(r.Context(), string(data))
		if err != nil {
			return nil, false, err
		}
		resp := respond(ed)
		resp.Report = report
		return resp, true, nil
	})
}

func (s *Server) exportWikitext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := s.acquire(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	text := sess.ed.Export(ctx)
	sess.mu.Unlock()
	writeText(w, http.StatusOK, text)
}

func (s *Server) autoLayout(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if err := ed.AutoLayout(r.Context()); err != nil {
			return nil, false, swerrors.Wrap(swerrors.ErrCodeInternal, err, "layout failed")
		}
		return respond(ed), true, nil
	})
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if !ed.Undo() {
			return nil, false, errRefused("nothing to undo")
		}
		return respond(ed), true, nil
	})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if !ed.Redo() {
			return nil, false, errRefused("nothing to redo")
		}
		return respond(ed), true, nil
	})
}

// statelessExport converts a posted project document to markup.
func (s *Server) statelessExport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := project.Unmarshal(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, wikitext.ExportWith(p.Story, s.opts.Export))
}

// statelessImport converts posted markup to a laid-out project document
// named by the "name" query parameter. Nothing is stored.
func (s *Server) statelessImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Imported"
	}
	ed := s.newEditor(project.New(name))
	report, err := ed.ImportWikitext(r.Context(), string(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Project project.Document `json:"project"`
		Report  *wikitext.Report `json:"report"`
	}{ed.Project().Document(), report})
}

// =============================================================================
// Scenes, choices and edges
// =============================================================================

func (s *Server) addScene(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position layout.Point `json:"position"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, http.StatusCreated, func(ed *editor.Editor) (*editResponse, bool, error) {
		sc := ed.AddScene(req.Position)
		return respond(ed).withScene(sc.ID), true, nil
	})
}

// sceneUpdate is a partial scene edit; absent fields keep their value.
type sceneUpdate struct {
	Title         *string       `json:"title"`
	Image         *string       `json:"image"`
	ImageSize     *string       `json:"imagesize"`
	Text          *string       `json:"text"`
	IsEnding      *bool         `json:"isEnding"`
	IsGoodEnding  *bool         `json:"isGoodEnding"`
	StartOverText *string       `json:"startOverText"`
	Position      *layout.Point `json:"position"`
}

func (u sceneUpdate) apply(f story.SceneFields) story.SceneFields {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&f.Title, u.Title)
	setString(&f.Image, u.Image)
	setString(&f.ImageSize, u.ImageSize)
	setString(&f.Text, u.Text)
	setString(&f.StartOverText, u.StartOverText)
	if u.IsEnding != nil {
		f.IsEnding = *u.IsEnding
	}
	if u.IsGoodEnding != nil {
		f.IsGoodEnding = *u.IsGoodEnding
	}
	return f
}

func (s *Server) updateScene(w http.ResponseWriter, r *http.Request) {
	var req sceneUpdate
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sceneID := chi.URLParam(r, "sceneID")
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		sc, ok := ed.Scene(sceneID)
		if !ok {
			return nil, false, errNotFound("scene %s not found", sceneID)
		}
		if f := req.apply(sc.Fields()); f != sc.Fields() {
			ed.UpdateScene(sceneID, f)
		}
		if req.Position != nil {
			ed.Move(sceneID, *req.Position)
		}
		return respond(ed).withScene(sceneID), true, nil
	})
}

func (s *Server) deleteScene(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "sceneID")
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if _, ok := ed.Scene(sceneID); !ok {
			return nil, false, errNotFound("scene %s not found", sceneID)
		}
		if !ed.DeleteScene(sceneID) {
			return nil, false, errRefused("the start scene cannot be deleted")
		}
		return respond(ed), true, nil
	})
}

func (s *Server) duplicateScene(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "sceneID")
	s.edit(w, r, http.StatusCreated, func(ed *editor.Editor) (*editResponse, bool, error) {
		dup, ok := ed.DuplicateScene(sceneID)
		if !ok {
			return nil, false, errNotFound("scene %s not found", sceneID)
		}
		return respond(ed).withScene(dup.ID), true, nil
	})
}

func (s *Server) addChoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sceneID := chi.URLParam(r, "sceneID")
	s.edit(w, r, http.StatusCreated, func(ed *editor.Editor) (*editResponse, bool, error) {
		idx, ok := ed.AddChoice(sceneID, req.Text)
		if !ok {
			return nil, false, errNotFound("scene %s not found", sceneID)
		}
		resp := respond(ed).withScene(sceneID)
		resp.Index = &idx
		return resp, true, nil
	})
}

// choiceIndex parses the {index} URL parameter.
func choiceIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		return 0, errBadRequest("invalid choice index %q", chi.URLParam(r, "index"))
	}
	return idx, nil
}

func (s *Server) setChoiceText(w http.ResponseWriter, r *http.Request) {
	idx, err := choiceIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sceneID := chi.URLParam(r, "sceneID")
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if !ed.SetChoiceText(sceneID, idx, req.Text) {
			return nil, false, errRefused("scene %s has no choice %d", sceneID, idx)
		}
		return respond(ed).withScene(sceneID), true, nil
	})
}

func (s *Server) deleteChoice(w http.ResponseWriter, r *http.Request) {
	idx, err := choiceIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sceneID := chi.URLParam(r, "sceneID")
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if !ed.DeleteChoice(sceneID, idx) {
			return nil, false, errRefused("scene %s has no choice %d", sceneID, idx)
		}
		return respond(ed).withScene(sceneID), true, nil
	})
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source       string `json:"source"`
		SourceHandle string `json:"sourceHandle"`
		Target       string `json:"target"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := story.ParseHandle(req.SourceHandle)
	if err != nil {
		s.writeError(w, r, errBadRequest("%v", err))
		return
	}
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if !ed.Connect(req.Source, h, req.Target) {
			return nil, false, errRefused("cannot connect %s/%s to %s", req.Source, req.SourceHandle, req.Target)
		}
		return respond(ed), true, nil
	})
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	h, err := story.ParseHandle(chi.URLParam(r, "handle"))
	if err != nil {
		s.writeError(w, r, errBadRequest("%v", err))
		return
	}
	sceneID := chi.URLParam(r, "sceneID")
	s.edit(w, r, http.StatusOK, func(ed *editor.Editor) (*editResponse, bool, error) {
		if !ed.Disconnect(sceneID, h) {
			return nil, false, errRefused("no edge leaves %s/%s", sceneID, h)
		}
		return respond(ed), true, nil
	})
}
