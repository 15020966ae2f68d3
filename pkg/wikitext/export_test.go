package wikitext

import (
	"strings"
	"testing"

	"github.com/matzehuels/storyweaver/pkg/story"
)

// lines joins its arguments with newlines. Used so the trailing blank after
// "|text =" stays visible in test expectations.
func lines(ls ...string) string { return strings.Join(ls, "\n") }

func TestExportSample(t *testing.T) {
	want := lines(
		"{{#switch:{{Get}}",
		"|0 =",
		"{{Text adventure",
		"|text = ",
		"You are at a crossroads in a dark forest. Two paths stretch before you, one to the left and one to the right. Which way do you go?",
		"",
		"{{Text adventure choice|1|Go left.}}",
		"{{Text adventure choice|2|Go right.}}",
		"}}",
		"|1 =",
		"{{Text adventure",
		"|text = ",
		"The left path leads to a sunlit clearing. In the center sits an ancient treasure chest, its lock long since rusted away.",
		"",
		"{{Text adventure choice|3|Open the chest.}}",
		"}}",
		"|2 =",
		"{{Text adventure",
		"|title = You Have Died",
		"|text = ",
		"The right path conceals a hidden pit. You plummet into the darkness below.",
		"",
		"{{Text adventure choice|0|'''START OVER'''}}",
		"}}",
		"|3 =",
		"{{Text adventure",
		"|title = You Won!",
		"|text = ",
		"Inside the chest you find a king's ransom in gold coins, a jeweled crown, and a one-way portal back to civilization. You are rich beyond imagination.",
		"",
		"{{Text adventure choice|0|'''Play again?'''}}",
		"}}",
		"}}",
	)

	if got := Export(story.Sample()); got != want {
		t.Errorf("Export(Sample()) mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestExportUnresolved(t *testing.T) {
	s := story.NewWithStart()
	_, _ = s.AddChoice("0", "Wander off.")

	got := Export(s)
	if !strings.Contains(got, "{{Text adventure choice|?|Wander off.}}") {
		t.Errorf("Export() = %q, want unresolved choice line", got)
	}
}

func TestExportFields(t *testing.T) {
	s := story.New()
	_ = s.Insert(story.Scene{
		ID:        "start",
		NumericID: 0,
		Image:     "Forest.png",
		ImageSize: "300px",
		Title:     "Forest",
		Text:      "Trees.",
	})

	want := lines(
		"{{#switch:{{Get}}",
		"|0 =",
		"{{Text adventure",
		"|image = Forest.png",
		"|imagesize = 300px",
		"|title = Forest",
		"|text = ",
		"Trees.",
		"}}",
		"}}",
	)
	if got := Export(s); got != want {
		t.Errorf("Export() =\n%s\nwant:\n%s", got, want)
	}
}

func TestExportEndingDefaults(t *testing.T) {
	s := story.NewWithStart()
	end := s.AddScene()
	s.UpdateScene(end.ID, story.SceneFields{Text: "The end.", IsEnding: true})

	got := Export(s)
	if !strings.Contains(got, "The end.\n\n{{Text adventure choice|0|'''START OVER'''}}") {
		t.Errorf("Export() = %q, want default start-over line", got)
	}

	got = ExportWith(s, Options{DefaultStartOver: "Again?"})
	if !strings.Contains(got, "{{Text adventure choice|0|Again?}}") {
		t.Errorf("ExportWith() = %q, want configured start-over line", got)
	}
}

func TestExportIgnoresNoHandleEdges(t *testing.T) {
	s := story.NewWithStart()
	other := s.AddScene()
	_, _ = s.AddChoice("0", "Go.")
	if err := s.AddEdge(story.Edge{Source: "0", Handle: story.NoHandle, Target: other.ID}); err != nil {
		t.Fatal(err)
	}

	if got := Export(s); !strings.Contains(got, "{{Text adventure choice|?|Go.}}") {
		t.Errorf("Export() = %q, want choice left unresolved", got)
	}
}

func TestExportEmpty(t *testing.T) {
	if got, want := Export(story.New()), "{{#switch:{{Get}}\n\n}}"; got != want {
		t.Errorf("Export(empty) = %q, want %q", got, want)
	}
}

func TestExportStartFlaggedEndingIsStable(t *testing.T) {
	s := story.New()
	if err := s.Insert(story.Scene{ID: "0", NumericID: 0, Text: "Alone.", IsEnding: true}); err != nil {
		t.Fatal(err)
	}

	first := Export(s)
	if strings.Contains(first, "{{Text adventure choice|") {
		t.Fatalf("Export() wrote a return line for the start scene:\n%s", first)
	}
	res, err := Import(first)
	if err != nil {
		t.Fatal(err)
	}
	if again := Export(res.Story); again != first {
		t.Errorf("re-export differs:\n%s\nwant:\n%s", again, first)
	}
}
