package layout

import (
	"context"
	"time"

	"github.com/matzehuels/storyweaver/pkg/observability"
)

// Layered places nodes on ranks by breadth-first depth.
//
// The start node is searched first, then every other node without incoming
// edges, in input order. A node's rank is the depth at which the search first
// reaches it; nodes no search reaches share one rank after the deepest.
// Within a rank nodes keep their input order. The result depends only on the
// graph, never on map iteration.
type Layered struct {
	Options Options
}

// Layout implements [Layouter].
func (l *Layered) Layout(ctx context.Context, g Graph) (Positions, error) {
	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, EngineLayered, len(g.Nodes))

	opts := l.Options.withDefaults()
	ranks := assignRanks(g)

	pos := make(Positions, len(g.Nodes))
	slot := make(map[int]int)
	for _, id := range g.Nodes {
		r := ranks[id]
		i := slot[r]
		slot[r]++

		across := float64(r)
		within := float64(i)
		var p Point
		if opts.Direction == TopToBottom {
			p = Point{X: within * (opts.NodeWidth + opts.NodeSep), Y: across * (opts.NodeHeight + opts.RankSep)}
		} else {
			p = Point{X: across * (opts.NodeWidth + opts.RankSep), Y: within * (opts.NodeHeight + opts.NodeSep)}
		}
		pos[id] = p
	}

	observability.Layout().OnLayoutComplete(ctx, EngineLayered, time.Since(start), nil)
	return pos, nil
}

func assignRanks(g Graph) map[string]int {
	known := make(map[string]bool, len(g.Nodes))
	for _, id := range g.Nodes {
		known[id] = true
	}
	out := make(map[string][]string, len(g.Nodes))
	indeg := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		if !known[e.From] || !known[e.To] || e.From == e.To {
			continue
		}
		out[e.From] = append(out[e.From], e.To)
		indeg[e.To]++
	}

	var roots []string
	if known[g.Start] {
		roots = append(roots, g.Start)
	}
	for _, id := range g.Nodes {
		if id != g.Start && indeg[id] == 0 {
			roots = append(roots, id)
		}
	}

	ranks := make(map[string]int, len(g.Nodes))
	deepest := -1
	for _, root := range roots {
		if _, done := ranks[root]; done {
			continue
		}
		ranks[root] = 0
		queue := []string{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if ranks[id] > deepest {
				deepest = ranks[id]
			}
			for _, next := range out[id] {
				if _, seen := ranks[next]; seen {
					continue
				}
				ranks[next] = ranks[id] + 1
				queue = append(queue, next)
			}
		}
	}

	for _, id := range g.Nodes {
		if _, ok := ranks[id]; !ok {
			ranks[id] = deepest + 1
		}
	}
	return ranks
}
