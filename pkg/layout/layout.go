// Package layout assigns canvas positions to the scenes of a story.
//
// Two engines implement [Layouter]:
//
//   - [Graphviz] runs the Graphviz dot engine and reads the computed
//     coordinates back from its attributed output.
//   - [Layered] is a deterministic pure-Go placement by breadth-first depth
//     from the start scene. It needs no native library and is what tests
//     and constrained environments use.
//
// Both return top-left coordinates with y growing downwards, the convention
// of the canvas front-end. Node sizes and separations are in pixels.
//
//	g := layout.FromStory(s)
//	l, _ := layout.New(layout.EngineGraphviz, layout.DefaultOptions())
//	pos, err := l.Layout(ctx, g)
package layout

import (
	"context"
	"fmt"

	"github.com/matzehuels/storyweaver/pkg/story"
)

// Engine names accepted by [New].
const (
	EngineGraphviz = "graphviz"
	EngineLayered  = "layered"
)

// Direction is the rank direction of a layout.
type Direction string

const (
	// LeftToRight places successive ranks to the right.
	LeftToRight Direction = "LR"
	// TopToBottom places successive ranks below.
	TopToBottom Direction = "TB"
)

// Options configures the geometry shared by all engines.
type Options struct {
	Direction  Direction
	RankSep    float64 // Gap between ranks
	NodeSep    float64 // Gap between nodes of the same rank
	NodeWidth  float64
	NodeHeight float64
}

// DefaultOptions matches the editor canvas: left to right, 100px between
// ranks, 60px between siblings, 220x160px scene cards.
func DefaultOptions() Options {
	return Options{
		Direction:  LeftToRight,
		RankSep:    100,
		NodeSep:    60,
		NodeWidth:  220,
		NodeHeight: 160,
	}
}

// withDefaults fills zero fields from [DefaultOptions].
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Direction == "" {
		o.Direction = d.Direction
	}
	if o.RankSep <= 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep <= 0 {
		o.NodeSep = d.NodeSep
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	return o
}

// Point is a top-left canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps node IDs to their top-left corner.
type Positions map[string]Point

// Edge is a directed connection between two nodes of a [Graph].
type Edge struct {
	From, To string
}

// Graph is the engine-neutral input of a layout.
type Graph struct {
	Nodes []string // In display order
	Edges []Edge
	Start string // Root placed first; may be empty
}

// FromStory builds the layout graph of s: one node per scene in NumericID
// order and one edge per stored edge. The implicit return of endings to the
// start scene is not an edge and does not influence placement.
func FromStory(s *story.Story) Graph {
	var g Graph
	for _, sc := range s.SortedScenes() {
		g.Nodes = append(g.Nodes, sc.ID)
	}
	for _, e := range s.Edges() {
		g.Edges = append(g.Edges, Edge{From: e.Source, To: e.Target})
	}
	if start, ok := s.Start(); ok {
		g.Start = start.ID
	}
	return g
}

// Layouter computes positions for every node of a graph.
type Layouter interface {
	Layout(ctx context.Context, g Graph) (Positions, error)
}

// New returns the layouter registered under engine.
func New(engine string, opts Options) (Layouter, error) {
	switch engine {
	case EngineGraphviz, "":
		return &Graphviz{Options: opts}, nil
	case EngineLayered:
		return &Layered{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unknown layout engine %q (use %s or %s)", engine, EngineGraphviz, EngineLayered)
	}
}

// Engines lists the valid engine names.
func Engines() []string { return []string{EngineGraphviz, EngineLayered} }
