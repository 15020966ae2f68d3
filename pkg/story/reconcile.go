package story

import (
	"slices"
	"strconv"
)

// =============================================================================
// Edge Reconciler
// =============================================================================

// Connect links the choice slot h of source to target.
//
// Any edge already leaving (source, h) is replaced, so a handle never has
// more than one outgoing edge. Self-loops, unknown scenes and handles that
// do not address one of the source's choices are refused. Connect reports
// whether the story changed.
func (s *Story) Connect(source string, h Handle, target string) bool {
	if source == target {
		return false
	}
	src, ok := s.byID[source]
	if !ok {
		return false
	}
	if _, ok := s.byID[target]; !ok {
		return false
	}
	if !h.IsChoice() || h.Index() >= len(src.Choices) {
		return false
	}
	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool {
		return e.Source == source && e.Handle == h
	})
	s.edges = append(s.edges, Edge{Source: source, Handle: h, Target: target})
	return true
}

// Disconnect removes the edge leaving (source, h), if any.
func (s *Story) Disconnect(source string, h Handle) bool {
	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool {
		return e.Source == source && e.Handle == h
	})
	return len(s.edges) != before
}

// DeleteChoice removes the choice at index from sceneID together with its
// edge, and shifts the handles of that scene's later choices down by one.
// The choice list and the edge handles are updated in the same call.
func (s *Story) DeleteChoice(sceneID string, index int) bool {
	sc, ok := s.byID[sceneID]
	if !ok || index < 0 || index >= len(sc.Choices) {
		return false
	}
	removed := ChoiceHandle(index)
	edges := s.edges[:0]
	for _, e := range s.edges {
		if e.Source == sceneID && e.Handle == removed {
			continue
		}
		if e.Source == sceneID && e.Handle.IsChoice() && e.Handle > removed {
			e.Handle--
		}
		edges = append(edges, e)
	}
	s.edges = edges
	sc.Choices = slices.Delete(sc.Choices, index, index+1)
	return true
}

// DeleteScene removes sceneID and every edge that starts or ends there.
// The start scene is never deleted.
func (s *Story) DeleteScene(sceneID string) bool {
	sc, ok := s.byID[sceneID]
	if !ok || sc.IsStart() {
		return false
	}
	s.scenes = slices.DeleteFunc(s.scenes, func(x *Scene) bool { return x.ID == sceneID })
	delete(s.byID, sceneID)
	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool {
		return e.Source == sceneID || e.Target == sceneID
	})
	return true
}

// =============================================================================
// Scene Editing
// =============================================================================

// AddScene appends a blank scene numbered [Story.NextNumericID] and returns it.
func (s *Story) AddScene() *Scene {
	n := s.NextNumericID()
	sc := &Scene{ID: s.freeID(n), NumericID: n}
	s.scenes = append(s.scenes, sc)
	s.byID[sc.ID] = sc
	return sc
}

// freeID returns the decimal form of n, suffixed when that ID is already
// taken by a scene loaded with an unrelated ID.
func (s *Story) freeID(n int) string {
	id := strconv.Itoa(n)
	if _, taken := s.byID[id]; !taken {
		return id
	}
	for i := 1; ; i++ {
		cand := id + "-" + strconv.Itoa(i)
		if _, taken := s.byID[cand]; !taken {
			return cand
		}
	}
}

// DuplicateScene copies sceneID under a fresh numeric ID. The copy keeps
// the original's fields, choices and outgoing edges; incoming edges stay
// with the original. Returns false when sceneID is unknown.
func (s *Story) DuplicateScene(sceneID string) (*Scene, bool) {
	orig, ok := s.byID[sceneID]
	if !ok {
		return nil, false
	}
	n := s.NextNumericID()
	dup := orig.clone()
	dup.NumericID = n
	dup.ID = s.freeID(n)
	s.scenes = append(s.scenes, dup)
	s.byID[dup.ID] = dup

	for _, e := range s.Edges() {
		if e.Source != sceneID {
			continue
		}
		s.edges = append(s.edges, Edge{Source: dup.ID, Handle: e.Handle, Target: e.Target})
	}
	return dup, true
}

// AddChoice appends a choice to sceneID and returns its index.
func (s *Story) AddChoice(sceneID, text string) (int, bool) {
	sc, ok := s.byID[sceneID]
	if !ok {
		return -1, false
	}
	sc.Choices = append(sc.Choices, Choice{Text: text})
	return len(sc.Choices) - 1, true
}

// SetChoiceText relabels the choice at index of sceneID.
func (s *Story) SetChoiceText(sceneID string, index int, text string) bool {
	sc, ok := s.byID[sceneID]
	if !ok || index < 0 || index >= len(sc.Choices) {
		return false
	}
	sc.Choices[index].Text = text
	return true
}

// SceneFields holds the freely editable fields of a scene. Identity
// (ID, NumericID) and the choice list are never changed through it.
type SceneFields struct {
	Title         string
	Image         string
	ImageSize     string
	Text          string
	IsEnding      bool
	IsGoodEnding  bool
	StartOverText string
}

// Fields returns the editable fields of sc.
func (sc *Scene) Fields() SceneFields {
	return SceneFields{
		Title:         sc.Title,
		Image:         sc.Image,
		ImageSize:     sc.ImageSize,
		Text:          sc.Text,
		IsEnding:      sc.IsEnding,
		IsGoodEnding:  sc.IsGoodEnding,
		StartOverText: sc.StartOverText,
	}
}

// UpdateScene replaces the editable fields of sceneID. The start scene is
// never an ending, so its ending flags are cleared.
func (s *Story) UpdateScene(sceneID string, f SceneFields) bool {
	sc, ok := s.byID[sceneID]
	if !ok {
		return false
	}
	sc.Title = f.Title
	sc.Image = f.Image
	sc.ImageSize = f.ImageSize
	sc.Text = f.Text
	sc.IsEnding = f.IsEnding
	sc.IsGoodEnding = f.IsGoodEnding
	sc.StartOverText = f.StartOverText
	if sc.IsStart() {
		sc.IsEnding = false
		sc.IsGoodEnding = false
	}
	return true
}
