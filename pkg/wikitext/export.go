package wikitext

import (
	"strconv"
	"strings"

	"github.com/matzehuels/storyweaver/pkg/story"
)

// Options configures [ExportWith].
type Options struct {
	// DefaultStartOver labels the return-to-start choice of endings that do
	// not set their own text. Empty means [story.DefaultStartOverText].
	DefaultStartOver string
}

// Unresolved is the target written for a choice without an edge.
const Unresolved = "?"

// Export renders s as markup using default options. It never fails.
func Export(s *story.Story) string {
	return ExportWith(s, Options{})
}

// ExportWith renders s as markup. Scenes are emitted in NumericID order.
func ExportWith(s *story.Story, opts Options) string {
	startOver := opts.DefaultStartOver
	if startOver == "" {
		startOver = story.DefaultStartOverText
	}

	type slot struct {
		source string
		handle story.Handle
	}
	targets := make(map[slot]int, s.EdgeCount())
	for _, e := range s.Edges() {
		if !e.Handle.IsChoice() {
			continue
		}
		dst, ok := s.Scene(e.Target)
		if !ok {
			continue
		}
		targets[slot{e.Source, e.Handle}] = dst.NumericID
	}

	var b strings.Builder
	b.WriteString("{{#switch:{{Get}}\n")
	if s.SceneCount() == 0 {
		b.WriteString("\n")
	}
	for _, sc := range s.SortedScenes() {
		lines := make([]string, 0, len(sc.Choices)+1)
		for i, c := range sc.Choices {
			target := Unresolved
			if n, ok := targets[slot{sc.ID, story.ChoiceHandle(i)}]; ok {
				target = strconv.Itoa(n)
			}
			lines = append(lines, choiceLine(target, c.Text))
		}
		if sc.IsEnding && !sc.IsStart() {
			label := sc.StartOverText
			if label == "" {
				label = startOver
			}
			lines = append(lines, choiceLine("0", label))
		}

		b.WriteString("|")
		b.WriteString(strconv.Itoa(sc.NumericID))
		b.WriteString(" =\n{{Text adventure\n")
		writeField(&b, "image", sc.Image)
		writeField(&b, "imagesize", sc.ImageSize)
		writeField(&b, "title", sc.Title)
		b.WriteString("|text = \n")
		b.WriteString(sc.Text)
		if len(lines) > 0 {
			b.WriteString("\n\n")
			b.WriteString(strings.Join(lines, "\n"))
		}
		b.WriteString("\n}}\n")
	}
	b.WriteString("}}")
	return b.String()
}

func choiceLine(target, text string) string {
	return "{{Text adventure choice|" + target + "|" + text + "}}"
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("|")
	b.WriteString(name)
	b.WriteString(" = ")
	b.WriteString(value)
	b.WriteString("\n")
}
