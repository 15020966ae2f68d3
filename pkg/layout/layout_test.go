package layout

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/storyweaver/pkg/story"
)

func TestFromStory(t *testing.T) {
	g := FromStory(story.Sample())

	if g.Start != "0" {
		t.Errorf("Start = %q, want 0", g.Start)
	}
	if len(g.Nodes) != 4 || g.Nodes[0] != "0" || g.Nodes[3] != "3" {
		t.Errorf("Nodes = %v", g.Nodes)
	}
	if len(g.Edges) != 3 {
		t.Errorf("Edges = %v, want 3 edges", g.Edges)
	}
}

func TestLayeredSample(t *testing.T) {
	l := &Layered{}
	pos, err := l.Layout(context.Background(), FromStory(story.Sample()))
	if err != nil {
		t.Fatal(err)
	}

	// Columns are 220 + 100 wide, rows 160 + 60 tall.
	want := Positions{
		"0": {X: 0, Y: 0},
		"1": {X: 320, Y: 0},
		"2": {X: 320, Y: 220},
		"3": {X: 640, Y: 0},
	}
	for id, p := range want {
		if pos[id] != p {
			t.Errorf("pos[%s] = %v, want %v", id, pos[id], p)
		}
	}
}

func TestLayeredDeterministic(t *testing.T) {
	s := story.Sample()
	for i := 0; i < 5; i++ {
		s.AddScene()
	}
	g := FromStory(s)
	l := &Layered{}

	first, _ := l.Layout(context.Background(), g)
	for i := 0; i < 20; i++ {
		again, _ := l.Layout(context.Background(), g)
		for id, p := range first {
			if again[id] != p {
				t.Fatalf("run %d: pos[%s] = %v, want %v", i, id, again[id], p)
			}
		}
	}
}

func TestLayeredRanks(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
		want map[string]int
	}{
		{
			name: "StartFirst",
			g: Graph{
				Nodes: []string{"b", "s", "c"},
				Edges: []Edge{{"s", "b"}, {"b", "c"}},
				Start: "s",
			},
			want: map[string]int{"s": 0, "b": 1, "c": 2},
		},
		{
			name: "BackEdgeToStart",
			g: Graph{
				Nodes: []string{"s", "a"},
				Edges: []Edge{{"s", "a"}, {"a", "s"}},
				Start: "s",
			},
			want: map[string]int{"s": 0, "a": 1},
		},
		{
			name: "ShortestDepth",
			g: Graph{
				Nodes: []string{"s", "a", "b"},
				Edges: []Edge{{"s", "a"}, {"a", "b"}, {"s", "b"}},
				Start: "s",
			},
			want: map[string]int{"s": 0, "a": 1, "b": 1},
		},
		{
			name: "UnreachableCycleAfterDeepest",
			g: Graph{
				Nodes: []string{"s", "a", "x", "y"},
				Edges: []Edge{{"s", "a"}, {"x", "y"}, {"y", "x"}},
				Start: "s",
			},
			want: map[string]int{"s": 0, "a": 1, "x": 2, "y": 2},
		},
		{
			name: "OtherSources",
			g: Graph{
				Nodes: []string{"s", "orphan", "a"},
				Edges: []Edge{{"orphan", "a"}},
				Start: "s",
			},
			want: map[string]int{"s": 0, "orphan": 0, "a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assignRanks(tt.g)
			for id, r := range tt.want {
				if got[id] != r {
					t.Errorf("rank[%s] = %d, want %d", id, got[id], r)
				}
			}
		})
	}
}

func TestLayeredTopToBottom(t *testing.T) {
	l := &Layered{Options: Options{Direction: TopToBottom}}
	pos, _ := l.Layout(context.Background(), Graph{
		Nodes: []string{"s", "a", "b"},
		Edges: []Edge{{"s", "a"}, {"s", "b"}},
		Start: "s",
	})
	if pos["a"] != (Point{X: 0, Y: 260}) || pos["b"] != (Point{X: 280, Y: 260}) {
		t.Errorf("pos = %v", pos)
	}
}

func TestBuildDOT(t *testing.T) {
	dot, names := BuildDOT(Graph{
		Nodes: []string{"start", `we"ird`},
		Edges: []Edge{{"start", `we"ird`}, {"start", "missing"}},
	}, DefaultOptions())

	for _, want := range []string{
		"rankdir=LR;",
		"ranksep=1.3889;",
		"nodesep=0.8333;",
		"width=3.0556, height=2.2222",
		"n0 -> n1;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "missing") || strings.Count(dot, "->") != 1 {
		t.Errorf("DOT kept an edge to an unknown node:\n%s", dot)
	}
	if names["n1"] != `we"ird` {
		t.Errorf("names[n1] = %q", names["n1"])
	}
}

func TestParsePositions(t *testing.T) {
	out := `digraph G {
	graph [bb="0,0,860,380",
		nodesep=0.8333,
		rankdir=LR,
		ranksep=1.3889
	];
	node [fixedsize=true,
		height=2.2222,
		label="",
		shape=box,
		width=3.0556
	];
	n0	[pos="110,190"];
	n1	[height=2.2222,
		pos="430,300",
		width=3.0556];
	n0 -> n1	[pos="e,320,290 220,200 250,230 280,260 310,280"];
}
`
	names := map[string]string{"n0": "0", "n1": "1"}
	pos, err := ParsePositions(out, names, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if pos["0"] != (Point{X: 0, Y: 110}) {
		t.Errorf("pos[0] = %v, want {0 110}", pos["0"])
	}
	if pos["1"] != (Point{X: 320, Y: 0}) {
		t.Errorf("pos[1] = %v, want {320 0}", pos["1"])
	}
}

func TestParsePositionsIncomplete(t *testing.T) {
	if _, err := ParsePositions(`digraph G { n0 [pos="1,1"]; }`, map[string]string{"n0": "0"}, Options{}); err == nil {
		t.Error("expected error without bounding box")
	}
	out := `digraph G { graph [bb="0,0,10,10"]; n0 [pos="1,1"]; }`
	if _, err := ParsePositions(out, map[string]string{"n0": "0", "n1": "1"}, Options{}); err == nil {
		t.Error("expected error for missing node position")
	}
}

func TestNew(t *testing.T) {
	for _, engine := range Engines() {
		if _, err := New(engine, Options{}); err != nil {
			t.Errorf("New(%q) error = %v", engine, err)
		}
	}
	if _, err := New("dagre", Options{}); err == nil {
		t.Error("New(dagre) should fail")
	}
}
