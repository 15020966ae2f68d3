package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/story"
)

// Fill colours per scene kind.
var fills = map[story.Kind]string{
	story.KindStart:      "#cfe2ff",
	story.KindGoodEnding: "#d1e7dd",
	story.KindBadEnding:  "#f8d7da",
	story.KindRegular:    "white",
}

// Options configures diagram generation.
type Options struct {
	// Direction is the rank direction; empty means left to right.
	Direction layout.Direction
	// Excerpt adds up to this many runes of scene text to each label.
	// Zero shows no text.
	Excerpt int
}

// ToDOT converts s to Graphviz DOT source. Scenes appear in NumericID order
// and edges in story order, so equal stories give equal output.
func ToDOT(s *story.Story, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = layout.LeftToRight
	}

	var buf bytes.Buffer
	buf.WriteString("digraph story {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("\n")

	scenes := s.SortedScenes()
	for _, sc := range scenes {
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=%s];\n",
			quote(sc.ID), quote(label(sc, opts.Excerpt)), quote(fills[sc.Kind()]))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges() {
		if _, ok := s.Scene(e.Target); !ok {
			continue
		}
		if !e.Handle.IsChoice() {
			fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.Source), quote(e.Target))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n",
			quote(e.Source), quote(e.Target), quote(strconv.Itoa(e.Handle.Index()+1)))
	}

	if start, ok := s.Start(); ok {
		for _, sc := range scenes {
			if !sc.IsEnding || sc.IsStart() {
				continue
			}
			fmt.Fprintf(&buf, "  %s -> %s [style=dashed, color=grey50, constraint=false];\n",
				quote(sc.ID), quote(start.ID))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(sc *story.Scene, excerpt int) string {
	l := "#" + strconv.Itoa(sc.NumericID)
	if sc.Title != "" {
		l += " " + sc.Title
	}
	if excerpt > 0 && sc.Text != "" {
		l += "\n" + truncate(strings.Join(strings.Fields(sc.Text), " "), excerpt)
	}
	return l
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
