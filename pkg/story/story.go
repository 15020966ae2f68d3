package story

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	// ErrInvalidSceneID is returned by [Story.Insert] when the scene ID is empty.
	ErrInvalidSceneID = errors.New("scene ID must not be empty")

	// ErrDuplicateSceneID is returned by [Story.Insert] when another scene
	// already uses the same ID.
	ErrDuplicateSceneID = errors.New("duplicate scene ID")

	// ErrInvalidNumericID is returned when a scene's NumericID is negative.
	ErrInvalidNumericID = errors.New("numeric ID must not be negative")

	// ErrDuplicateNumericID is returned when two scenes share a NumericID.
	// NumericID is the externally visible scene number and must be unique.
	ErrDuplicateNumericID = errors.New("duplicate numeric ID")

	// ErrMissingStart is returned by [Story.Validate] when no scene has
	// NumericID 0.
	ErrMissingStart = errors.New("story has no start scene (numeric ID 0)")

	// ErrUnknownScene is returned when an edge references a scene that is
	// not part of the story.
	ErrUnknownScene = errors.New("unknown scene")

	// ErrSelfLoop is returned by [Story.AddEdge] for an edge whose source
	// and target are the same scene.
	ErrSelfLoop = errors.New("edge source and target must differ")

	// ErrHandleOutOfRange is returned when an edge handle does not address
	// one of the source scene's choices.
	ErrHandleOutOfRange = errors.New("handle out of choice range")

	// ErrDuplicateHandle is returned when a second edge leaves the same
	// (scene, handle) pair.
	ErrDuplicateHandle = errors.New("handle already connected")

	// ErrInvalidHandle is returned by [ParseHandle] for malformed handles.
	ErrInvalidHandle = errors.New("invalid handle")
)

// DefaultStartOverText is the label of the implicit return-to-start choice
// when an ending scene does not set its own.
const DefaultStartOverText = "'''START OVER'''"

// Choice is a labeled decision point of a scene. The destination is not
// stored here; it is the target of the edge leaving the choice's handle.
type Choice struct {
	Text string `json:"text"`
}

// Scene is a node of the story graph.
//
// The zero value is a valid non-start scene once ID is set.
type Scene struct {
	ID        string // Opaque identifier, stable for the session
	NumericID int    // Externally visible scene number; 0 is the start scene

	Title     string
	Image     string
	ImageSize string
	Text      string

	// Choices are ordered; the index of a choice is its handle.
	Choices []Choice

	IsEnding     bool
	IsGoodEnding bool // Display only; meaningful when IsEnding is set
	// StartOverText labels the implicit return-to-start choice of an ending.
	StartOverText string
}

// IsStart reports whether s is the start scene.
func (s *Scene) IsStart() bool { return s.NumericID == 0 }

// StartOverLabel returns StartOverText, or [DefaultStartOverText] when empty.
func (s *Scene) StartOverLabel() string {
	if s.StartOverText == "" {
		return DefaultStartOverText
	}
	return s.StartOverText
}

// clone returns a deep copy of s.
func (s *Scene) clone() *Scene {
	c := *s
	c.Choices = slices.Clone(s.Choices)
	return &c
}

// Kind classifies a scene for display purposes.
type Kind int

const (
	// KindRegular is an ordinary scene.
	KindRegular Kind = iota
	// KindStart is the scene with NumericID 0.
	KindStart
	// KindGoodEnding is an ending flagged as a win.
	KindGoodEnding
	// KindBadEnding is an ending that is not flagged as a win.
	KindBadEnding
)

// String returns a lowercase name for k.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindGoodEnding:
		return "good-ending"
	case KindBadEnding:
		return "bad-ending"
	default:
		return "regular"
	}
}

// Kind returns the display classification of s. The start scene wins over
// ending flags.
func (s *Scene) Kind() Kind {
	switch {
	case s.IsStart():
		return KindStart
	case s.IsEnding && s.IsGoodEnding:
		return KindGoodEnding
	case s.IsEnding:
		return KindBadEnding
	default:
		return KindRegular
	}
}

// Edge is a directed connection from one scene's choice slot to another
// scene. The target side is always the scene's single inbound slot.
type Edge struct {
	Source string
	Handle Handle
	Target string
}

// ID returns a stable identifier for the edge, derived from its endpoints.
func (e Edge) ID() string {
	if !e.Handle.IsChoice() {
		return "e" + e.Source + "-" + e.Target
	}
	return "e" + e.Source + "-choice" + strconv.Itoa(e.Handle.Index()) + "-" + e.Target
}

// Story is the graph of scenes and edges.
//
// The zero value is not usable; use [New] or [Sample].
type Story struct {
	scenes []*Scene
	byID   map[string]*Scene
	edges  []Edge
}

// New creates an empty story. Callers must insert a start scene before the
// story validates; [NewWithStart] does this for them.
func New() *Story {
	return &Story{byID: make(map[string]*Scene)}
}

// NewWithStart creates a story holding only a blank start scene with ID "0".
func NewWithStart() *Story {
	s := New()
	_ = s.Insert(Scene{ID: "0", NumericID: 0})
	return s
}

// =============================================================================
// Accessors
// =============================================================================

// Scenes returns the scenes in insertion order. The slice is a copy but the
// scenes are shared; use the reconciler methods to modify them.
func (s *Story) Scenes() []*Scene { return slices.Clone(s.scenes) }

// SortedScenes returns the scenes ordered by NumericID ascending.
func (s *Story) SortedScenes() []*Scene {
	out := slices.Clone(s.scenes)
	slices.SortStableFunc(out, func(a, b *Scene) int { return cmp.Compare(a.NumericID, b.NumericID) })
	return out
}

// Edges returns a copy of the edge list.
func (s *Story) Edges() []Edge { return slices.Clone(s.edges) }

// SceneCount returns the number of scenes.
func (s *Story) SceneCount() int { return len(s.scenes) }

// EdgeCount returns the number of edges.
func (s *Story) EdgeCount() int { return len(s.edges) }

// Scene looks up a scene by ID.
func (s *Story) Scene(id string) (*Scene, bool) {
	sc, ok := s.byID[id]
	return sc, ok
}

// SceneByNumericID looks up a scene by its externally visible number.
func (s *Story) SceneByNumericID(n int) (*Scene, bool) {
	for _, sc := range s.scenes {
		if sc.NumericID == n {
			return sc, true
		}
	}
	return nil, false
}

// Start returns the start scene, if present.
func (s *Story) Start() (*Scene, bool) { return s.SceneByNumericID(0) }

// NextNumericID returns the numeric ID a newly created scene must use:
// one more than the largest existing NumericID, or 0 for an empty story.
func (s *Story) NextNumericID() int {
	next := 0
	for _, sc := range s.scenes {
		if sc.NumericID >= next {
			next = sc.NumericID + 1
		}
	}
	return next
}

// OutgoingEdge returns the edge leaving (source, h), if any.
func (s *Story) OutgoingEdge(source string, h Handle) (Edge, bool) {
	for _, e := range s.edges {
		if e.Source == source && e.Handle == h {
			return e, true
		}
	}
	return Edge{}, false
}

// ChoiceTarget returns the scene the choice at index of sceneID leads to.
func (s *Story) ChoiceTarget(sceneID string, index int) (*Scene, bool) {
	e, ok := s.OutgoingEdge(sceneID, ChoiceHandle(index))
	if !ok {
		return nil, false
	}
	return s.Scene(e.Target)
}

// Incoming returns the edges that end at sceneID.
func (s *Story) Incoming(sceneID string) []Edge {
	var out []Edge
	for _, e := range s.edges {
		if e.Target == sceneID {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy of the story.
func (s *Story) Clone() *Story {
	c := &Story{
		scenes: make([]*Scene, len(s.scenes)),
		byID:   make(map[string]*Scene, len(s.scenes)),
		edges:  slices.Clone(s.edges),
	}
	for i, sc := range s.scenes {
		cp := sc.clone()
		c.scenes[i] = cp
		c.byID[cp.ID] = cp
	}
	return c
}

// =============================================================================
// Bulk Construction
// =============================================================================

// Insert adds a copy of sc to the story. It is used by loaders (importer,
// project files) that supply fully formed scenes. Returns ErrInvalidSceneID,
// ErrDuplicateSceneID, ErrInvalidNumericID or ErrDuplicateNumericID.
func (s *Story) Insert(sc Scene) error {
	if sc.ID == "" {
		return ErrInvalidSceneID
	}
	if _, exists := s.byID[sc.ID]; exists {
		return ErrDuplicateSceneID
	}
	if sc.NumericID < 0 {
		return ErrInvalidNumericID
	}
	if _, exists := s.SceneByNumericID(sc.NumericID); exists {
		return ErrDuplicateNumericID
	}
	sc.Choices = slices.Clone(sc.Choices)
	node := &sc
	s.scenes = append(s.scenes, node)
	s.byID[node.ID] = node
	return nil
}

// AddEdge adds an edge supplied by a loader. Unlike [Story.Connect] it does
// not replace an existing edge; a second edge on the same handle is an
// error, as are self-loops, unknown endpoints and out-of-range handles.
func (s *Story) AddEdge(e Edge) error {
	if err := s.checkEdge(e); err != nil {
		return err
	}
	if _, exists := s.OutgoingEdge(e.Source, e.Handle); exists {
		return ErrDuplicateHandle
	}
	s.edges = append(s.edges, e)
	return nil
}

func (s *Story) checkEdge(e Edge) error {
	src, ok := s.byID[e.Source]
	if !ok {
		return fmt.Errorf("%w: source %s", ErrUnknownScene, e.Source)
	}
	if _, ok := s.byID[e.Target]; !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownScene, e.Target)
	}
	if e.Source == e.Target {
		return ErrSelfLoop
	}
	if e.Handle.IsChoice() && e.Handle.Index() >= len(src.Choices) {
		return fmt.Errorf("%w: %s has %d choices", ErrHandleOutOfRange, e.Handle, len(src.Choices))
	}
	return nil
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every structural invariant and returns the first
// violation found, or nil.
func (s *Story) Validate() error {
	ids := make(map[string]bool, len(s.scenes))
	numeric := make(map[int]string, len(s.scenes))
	for _, sc := range s.scenes {
		if sc.ID == "" {
			return ErrInvalidSceneID
		}
		if ids[sc.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateSceneID, sc.ID)
		}
		ids[sc.ID] = true
		if sc.NumericID < 0 {
			return fmt.Errorf("%w: scene %s", ErrInvalidNumericID, sc.ID)
		}
		if other, dup := numeric[sc.NumericID]; dup {
			return fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateNumericID, sc.NumericID, other, sc.ID)
		}
		numeric[sc.NumericID] = sc.ID
	}
	if _, ok := numeric[0]; !ok {
		return ErrMissingStart
	}

	type slot struct {
		source string
		handle Handle
	}
	seen := make(map[slot]bool, len(s.edges))
	for _, e := range s.edges {
		if err := s.checkEdge(e); err != nil {
			return fmt.Errorf("edge %s: %w", e.ID(), err)
		}
		k := slot{e.Source, e.Handle}
		if seen[k] {
			return fmt.Errorf("edge %s: %w", e.ID(), ErrDuplicateHandle)
		}
		seen[k] = true
	}
	return nil
}
