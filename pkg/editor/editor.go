// Package editor implements an editing session over one project.
//
// An [Editor] owns a project, the selected scene and an undo history. Every
// mutating call takes a snapshot, applies exactly one reconciler operation
// of package story and keeps the snapshot only when the operation changed
// something, so refused edits never create empty undo steps.
//
// Wikitext import is transactional: the markup is parsed and laid out first
// and only a complete result replaces the model. A failed import leaves the
// project, selection and history untouched.
//
// An Editor is safe for concurrent use.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/observability"
	"github.com/matzehuels/storyweaver/pkg/project"
	"github.com/matzehuels/storyweaver/pkg/story"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

// duplicateOffset is how far a duplicated scene is placed from its original.
const duplicateOffset = 40

// Options configures an [Editor].
type Options struct {
	Layouter   layout.Layouter  // nil uses layout.Layered with default geometry
	Export     wikitext.Options // Exporter options
	HistoryMax int              // Undo steps; 0 uses DefaultHistoryMax
	Logger     *log.Logger      // nil uses log.Default()
}

// Editor is an editing session.
type Editor struct {
	mu       sync.Mutex
	project  *project.Project
	selected string
	history  *History

	layouter layout.Layouter
	export   wikitext.Options
	logger   *log.Logger
}

// New starts a session on p. The editor takes ownership of p.
func New(p *project.Project, opts Options) *Editor {
	if opts.Layouter == nil {
		opts.Layouter = &layout.Layered{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Editor{
		project:  p,
		history:  NewHistory(opts.HistoryMax),
		layouter: opts.Layouter,
		export:   opts.Export,
		logger:   opts.Logger,
	}
}

// =============================================================================
// Reading
// =============================================================================

// Project returns a copy of the current project.
func (e *Editor) Project() *project.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project.Clone()
}

// ID returns the project ID.
func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project.ID
}

// Scene returns a copy of the scene with the given ID.
func (e *Editor) Scene(id string) (story.Scene, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sc, ok := e.project.Story.Scene(id)
	if !ok {
		return story.Scene{}, false
	}
	c := *sc
	c.Choices = append([]story.Choice(nil), sc.Choices...)
	return c, true
}

// Selected returns the selected scene ID, or "" when nothing is selected.
func (e *Editor) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Select selects sceneID. An empty ID clears the selection.
func (e *Editor) Select(sceneID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sceneID == "" {
		e.selected = ""
		return true
	}
	if _, ok := e.project.Story.Scene(sceneID); !ok {
		return false
	}
	e.selected = sceneID
	return true
}

// CanUndo reports whether [Editor.Undo] would change the project.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether [Editor.Redo] would change the project.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// Export renders the current story as markup.
func (e *Editor) Export(ctx context.Context) string {
	e.mu.Lock()
	s := e.project.Story
	start := time.Now()
	out := wikitext.ExportWith(s, e.export)
	scenes := s.SceneCount()
	e.mu.Unlock()

	observability.Codec().OnExport(ctx, scenes, len(out), time.Since(start))
	return out
}

// =============================================================================
// Editing
// =============================================================================

// mutate applies fn under the lock. The pre-edit snapshot becomes an undo
// step only when fn reports a change.
func (e *Editor) mutate(fn func(p *project.Project) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.project.Clone()
	if !fn(e.project) {
		return false
	}
	e.history.Push(snap)
	e.project.Touch()
	return true
}

// Connect links choice h of source to target, replacing an existing edge.
func (e *Editor) Connect(source string, h story.Handle, target string) bool {
	return e.mutate(func(p *project.Project) bool {
		return p.Story.Connect(source, h, target)
	})
}

// Disconnect removes the edge leaving choice h of source.
func (e *Editor) Disconnect(source string, h story.Handle) bool {
	return e.mutate(func(p *project.Project) bool {
		return p.Story.Disconnect(source, h)
	})
}

// DeleteChoice removes a choice and renumbers the later ones.
func (e *Editor) DeleteChoice(sceneID string, index int) bool {
	return e.mutate(func(p *project.Project) bool {
		return p.Story.DeleteChoice(sceneID, index)
	})
}

// DeleteScene removes a scene and its edges and clears the selection when
// it pointed at that scene. The start scene is refused.
func (e *Editor) DeleteScene(sceneID string) bool {
	return e.mutate(func(p *project.Project) bool {
		if !p.Story.DeleteScene(sceneID) {
			return false
		}
		delete(p.Positions, sceneID)
		if e.selected == sceneID {
			e.selected = ""
		}
		return true
	})
}

// AddScene creates a blank scene at the given canvas position and returns a
// copy of it.
func (e *Editor) AddScene(at layout.Point) story.Scene {
	var sc story.Scene
	e.mutate(func(p *project.Project) bool {
		created := p.Story.AddScene()
		p.Positions[created.ID] = at
		sc = *created
		return true
	})
	return sc
}

// DuplicateScene copies a scene with its choices and outgoing edges and
// places the copy next to the original.
func (e *Editor) DuplicateScene(sceneID string) (story.Scene, bool) {
	var sc story.Scene
	ok := e.mutate(func(p *project.Project) bool {
		dup, ok := p.Story.DuplicateScene(sceneID)
		if !ok {
			return false
		}
		at := p.Position(sceneID)
		p.Positions[dup.ID] = layout.Point{X: at.X + duplicateOffset, Y: at.Y + duplicateOffset}
		sc = *dup
		return true
	})
	return sc, ok
}

// AddChoice appends a choice to a scene and returns its index.
func (e *Editor) AddChoice(sceneID, text string) (int, bool) {
	idx := -1
	ok := e.mutate(func(p *project.Project) bool {
		var ok bool
		idx, ok = p.Story.AddChoice(sceneID, text)
		return ok
	})
	return idx, ok
}

// SetChoiceText relabels a choice.
func (e *Editor) SetChoiceText(sceneID string, index int, text string) bool {
	return e.mutate(func(p *project.Project) bool {
		return p.Story.SetChoiceText(sceneID, index, text)
	})
}

// UpdateScene replaces the editable fields of a scene.
func (e *Editor) UpdateScene(sceneID string, f story.SceneFields) bool {
	return e.mutate(func(p *project.Project) bool {
		return p.Story.UpdateScene(sceneID, f)
	})
}

// Move places a scene on the canvas. Moves are not undo steps.
func (e *Editor) Move(sceneID string, to layout.Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.project.Story.Scene(sceneID); !ok {
		return false
	}
	e.project.Positions[sceneID] = to
	e.project.Touch()
	return true
}

// Rename changes the project name.
func (e *Editor) Rename(name string) {
	e.mutate(func(p *project.Project) bool {
		p.Name = name
		return true
	})
}

// =============================================================================
// History
// =============================================================================

// Undo restores the state before the latest edit.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev, ok := e.history.Undo(e.project)
	if !ok {
		return false
	}
	e.restore(prev)
	return true
}

// Redo reapplies the latest undone edit.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, ok := e.history.Redo(e.project)
	if !ok {
		return false
	}
	e.restore(next)
	return true
}

func (e *Editor) restore(p *project.Project) {
	e.project = p
	if _, ok := p.Story.Scene(e.selected); !ok {
		e.selected = ""
	}
}

// =============================================================================
// Whole-model operations
// =============================================================================

// NewProject replaces the session with a fresh project, the sample story
// when sample is set. History and selection are cleared.
func (e *Editor) NewProject(name string, sample bool) {
	p := project.New(name)
	if sample {
		p = project.Sample(name)
	}
	e.LoadProject(p)
}

// LoadProject replaces the session with p. History and selection are
// cleared. The editor takes ownership of p.
func (e *Editor) LoadProject(p *project.Project) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.project = p
	e.selected = ""
	e.history.Clear()
}

// AutoLayout recomputes every scene position. It is an undo step.
func (e *Editor) AutoLayout(ctx context.Context) error {
	e.mu.Lock()
	g := layout.FromStory(e.project.Story)
	e.mu.Unlock()

	pos, err := e.layouter.Layout(ctx, g)
	if err != nil {
		return err
	}

	e.mutate(func(p *project.Project) bool {
		for id, pt := range pos {
			if _, ok := p.Story.Scene(id); ok {
				p.Positions[id] = pt
			}
		}
		return true
	})
	return nil
}

// ImportWikitext replaces the story with parsed markup laid out by the
// session's layouter. The previous story serves as baseline for display
// flags the markup does not carry. On any error the session is unchanged.
// The import is an undo step.
func (e *Editor) ImportWikitext(ctx context.Context, text string) (*wikitext.Report, error) {
	e.mu.Lock()
	baseline := e.project.Story.Clone()
	e.mu.Unlock()

	start := time.Now()
	res, err := wikitext.Import(text, wikitext.WithBaseline(baseline))
	if err != nil {
		observability.Codec().OnImport(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	observability.Codec().OnImport(ctx, res.Story.SceneCount(), len(res.Report.Warnings), time.Since(start), nil)

	pos, err := e.layouter.Layout(ctx, layout.FromStory(res.Story))
	if err != nil {
		return nil, err
	}

	e.mutate(func(p *project.Project) bool {
		p.Story = res.Story
		p.Positions = pos
		e.selected = ""
		return true
	})
	e.logger.Debug("imported wikitext",
		"scenes", res.Story.SceneCount(),
		"edges", res.Story.EdgeCount(),
		"warnings", len(res.Report.Warnings),
		"duration", time.Since(start))
	return &res.Report, nil
}
