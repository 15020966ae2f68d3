package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/story"
)

func TestToDOTSample(t *testing.T) {
	dot := ToDOT(story.Sample(), Options{})

	for _, want := range []string{
		"digraph story {",
		"rankdir=LR;",
		`"0" [label="#0", fillcolor="#cfe2ff"];`,
		`"1" [label="#1", fillcolor="white"];`,
		`"2" [label="#2 You Have Died", fillcolor="#f8d7da"];`,
		`"3" [label="#3 You Won!", fillcolor="#d1e7dd"];`,
		`"0" -> "1" [label="1"];`,
		`"0" -> "2" [label="2"];`,
		`"1" -> "3" [label="1"];`,
		`"2" -> "0" [style=dashed`,
		`"3" -> "0" [style=dashed`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if n := strings.Count(dot, "->"); n != 5 {
		t.Errorf("arrows = %d, want 5", n)
	}
}

func TestToDOTOptions(t *testing.T) {
	s := story.NewWithStart()
	sc, _ := s.Start()
	s.UpdateScene(sc.ID, story.SceneFields{Title: `Say "hi"`, Text: "A  very\nlong opening line"})

	dot := ToDOT(s, Options{Direction: layout.TopToBottom, Excerpt: 6})
	if !strings.Contains(dot, "rankdir=TB;") {
		t.Error("direction not applied")
	}
	if !strings.Contains(dot, `label="#0 Say \"hi\"\nA very…"`) {
		t.Errorf("label not escaped or truncated:\n%s", dot)
	}
}

func TestToDOTSkipsNoHandleLabel(t *testing.T) {
	s := story.NewWithStart()
	next := s.AddScene()
	start, _ := s.Start()
	if err := s.AddEdge(story.Edge{Source: start.ID, Handle: story.NoHandle, Target: next.ID}); err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(s, Options{})
	if !strings.Contains(dot, `"0" -> "1";`) {
		t.Errorf("unlabelled edge missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if plain := []byte("<svg><g/></svg>"); string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox was changed")
	}
}
