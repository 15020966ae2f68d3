package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/storyweaver/pkg/observability"
)

// pointsPerInch converts between Graphviz inches and canvas pixels. Graphviz
// reports coordinates in points, so one pixel is laid out as one point.
const pointsPerInch = 72

// Graphviz lays out graphs with the Graphviz dot engine.
type Graphviz struct {
	Options Options
	Logger  *log.Logger // nil uses log.Default()
}

// Layout implements [Layouter].
func (l *Graphviz) Layout(ctx context.Context, g Graph) (Positions, error) {
	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, EngineGraphviz, len(g.Nodes))

	pos, err := l.layout(ctx, g)

	observability.Layout().OnLayoutComplete(ctx, EngineGraphviz, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	l.logger().Debug("graphviz layout", "nodes", len(g.Nodes), "edges", len(g.Edges), "duration", time.Since(start))
	return pos, nil
}

func (l *Graphviz) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

func (l *Graphviz) layout(ctx context.Context, g Graph) (Positions, error) {
	if len(g.Nodes) == 0 {
		return Positions{}, nil
	}
	opts := l.Options.withDefaults()
	dot, names := BuildDOT(g, opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return ParsePositions(buf.String(), names, opts)
}

// BuildDOT renders g as the DOT input of a dot layout. Nodes are named n0,
// n1, ... in input order so arbitrary scene IDs never need quoting; the
// returned map resolves those names back to node IDs.
func BuildDOT(g Graph, opts Options) (string, map[string]string) {
	opts = opts.withDefaults()
	index := make(map[string]string, len(g.Nodes))
	names := make(map[string]string, len(g.Nodes))
	for i, id := range g.Nodes {
		name := "n" + strconv.Itoa(i)
		index[id] = name
		names[name] = id
	}

	var b strings.Builder
	b.WriteString("digraph G {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", opts.Direction)
	fmt.Fprintf(&b, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&b, "  nodesep=%s;\n", inches(opts.NodeSep))
	fmt.Fprintf(&b, "  node [shape=box, fixedsize=true, width=%s, height=%s, label=\"\"];\n",
		inches(opts.NodeWidth), inches(opts.NodeHeight))
	b.WriteString("\n")
	for _, id := range g.Nodes {
		fmt.Fprintf(&b, "  %s;\n", index[id])
	}
	b.WriteString("\n")
	for _, e := range g.Edges {
		from, ok1 := index[e.From]
		to, ok2 := index[e.To]
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&b, "  %s -> %s;\n", from, to)
	}
	b.WriteString("}\n")
	return b.String(), names
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

var (
	bbRe   = regexp.MustCompile(`bb="([-\d.e+]+),([-\d.e+]+),([-\d.e+]+),([-\d.e+]+)"`)
	nodeRe = regexp.MustCompile(`(?m)^\s*"?(n\d+)"?\s*\[([^\]]*)\]`)
	posRe  = regexp.MustCompile(`\bpos="([-\d.e+]+),([-\d.e+]+)!?"`)
)

// ParsePositions reads node centres from attributed dot output and converts
// them to top-left canvas coordinates. names maps DOT node names to node IDs
// as returned by [BuildDOT].
func ParsePositions(out string, names map[string]string, opts Options) (Positions, error) {
	opts = opts.withDefaults()
	m := bbRe.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("layout output has no bounding box")
	}
	top, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}

	pos := make(Positions, len(names))
	for _, nm := range nodeRe.FindAllStringSubmatch(out, -1) {
		id, ok := names[nm[1]]
		if !ok {
			continue
		}
		if _, done := pos[id]; done {
			continue
		}
		p := posRe.FindStringSubmatch(nm[2])
		if p == nil {
			continue
		}
		x, err1 := strconv.ParseFloat(p[1], 64)
		y, err2 := strconv.ParseFloat(p[2], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("node %s: bad position %q", id, p[0])
		}
		pos[id] = Point{
			X: x - opts.NodeWidth/2,
			Y: (top - y) - opts.NodeHeight/2,
		}
	}
	if len(pos) != len(names) {
		return nil, fmt.Errorf("layout output positions %d of %d nodes", len(pos), len(names))
	}
	return pos, nil
}
