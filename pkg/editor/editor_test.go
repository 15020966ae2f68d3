package editor

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	swerrors "github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/project"
	"github.com/matzehuels/storyweaver/pkg/story"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

func newEditor(t *testing.T) *Editor {
	t.Helper()
	return New(project.Sample("Crossroads"), Options{
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	})
}

func TestRefusedEditsAreNotUndoSteps(t *testing.T) {
	tests := []struct {
		name string
		edit func(e *Editor) bool
	}{
		{"DeleteStart", func(e *Editor) bool { return e.DeleteScene("0") }},
		{"SelfLoop", func(e *Editor) bool { return e.Connect("1", story.ChoiceHandle(0), "1") }},
		{"HandleOutOfRange", func(e *Editor) bool { return e.Connect("0", story.ChoiceHandle(5), "3") }},
		{"UnknownScene", func(e *Editor) bool { return e.DeleteScene("99") }},
		{"ChoiceOutOfRange", func(e *Editor) bool { return e.DeleteChoice("0", 2) }},
		{"DisconnectNothing", func(e *Editor) bool { return e.Disconnect("2", story.ChoiceHandle(0)) }},
		{"DuplicateUnknown", func(e *Editor) bool { _, ok := e.DuplicateScene("99"); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t)
			if tt.edit(e) {
				t.Fatal("edit was applied")
			}
			if e.CanUndo() {
				t.Error("refused edit created an undo step")
			}
		})
	}
}

func TestUndoRestoresChoicesAndEdges(t *testing.T) {
	e := newEditor(t)
	if !e.DeleteChoice("0", 0) {
		t.Fatal("DeleteChoice() refused")
	}
	p := e.Project()
	if sc, _ := p.Story.Scene("0"); len(sc.Choices) != 1 {
		t.Fatalf("choices = %d, want 1", len(sc.Choices))
	}
	if edge, ok := p.Story.OutgoingEdge("0", story.ChoiceHandle(0)); !ok || edge.Target != "2" {
		t.Fatalf("choice-0 edge = %+v, %v; want renumbered edge to 2", edge, ok)
	}

	if !e.Undo() {
		t.Fatal("Undo() = false")
	}
	p = e.Project()
	sc, _ := p.Story.Scene("0")
	if len(sc.Choices) != 2 || sc.Choices[0].Text != "Go left." {
		t.Errorf("choices after undo = %+v", sc.Choices)
	}
	if edge, ok := p.Story.OutgoingEdge("0", story.ChoiceHandle(0)); !ok || edge.Target != "1" {
		t.Errorf("choice-0 edge after undo = %+v, %v", edge, ok)
	}
	if p.Story.EdgeCount() != 3 {
		t.Errorf("edges after undo = %d, want 3", p.Story.EdgeCount())
	}

	if !e.Redo() {
		t.Fatal("Redo() = false")
	}
	if e.Project().Story.EdgeCount() != 2 {
		t.Error("Redo() did not reapply the deletion")
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	e := newEditor(t)
	e.AddChoice("2", "Try again")
	e.Undo()
	if !e.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}
	e.SetChoiceText("0", 0, "Head left.")
	if e.CanRedo() {
		t.Error("redo survived a new edit")
	}
}

func TestHistoryMax(t *testing.T) {
	e := New(project.Sample("x"), Options{HistoryMax: 2, Logger: log.NewWithOptions(io.Discard, log.Options{})})
	for i := 0; i < 4; i++ {
		e.AddScene(layout.Point{})
	}
	undone := 0
	for e.Undo() {
		undone++
	}
	if undone != 2 {
		t.Errorf("undo steps = %d, want 2", undone)
	}
	if got := e.Project().Story.SceneCount(); got != 6 {
		t.Errorf("scenes after undoing = %d, want 6", got)
	}
}

func TestDeleteSceneClearsSelection(t *testing.T) {
	e := newEditor(t)
	if !e.Select("2") {
		t.Fatal("Select(2) = false")
	}
	if !e.DeleteScene("2") {
		t.Fatal("DeleteScene(2) refused")
	}
	if e.Selected() != "" {
		t.Errorf("Selected() = %q after deleting it", e.Selected())
	}
	if _, ok := e.Project().Positions["2"]; ok {
		t.Error("position of deleted scene kept")
	}
	if e.Select("2") {
		t.Error("Select() of a deleted scene succeeded")
	}
}

func TestUndoDropsVanishedSelection(t *testing.T) {
	e := newEditor(t)
	sc := e.AddScene(layout.Point{X: 10, Y: 20})
	e.Select(sc.ID)
	e.Undo()
	if e.Selected() != "" {
		t.Errorf("Selected() = %q, want none", e.Selected())
	}
}

func TestDuplicateScene(t *testing.T) {
	e := newEditor(t)
	dup, ok := e.DuplicateScene("1")
	if !ok {
		t.Fatal("DuplicateScene() refused")
	}
	p := e.Project()
	if dup.NumericID != 4 || len(dup.Choices) != 1 {
		t.Errorf("duplicate = %+v", dup)
	}
	if edge, ok := p.Story.OutgoingEdge(dup.ID, story.ChoiceHandle(0)); !ok || edge.Target != "3" {
		t.Errorf("duplicate edge = %+v, %v", edge, ok)
	}
	orig := p.Position("1")
	if got := p.Position(dup.ID); got != (layout.Point{X: orig.X + 40, Y: orig.Y + 40}) {
		t.Errorf("duplicate position = %v", got)
	}
}

func TestMoveIsNotAnUndoStep(t *testing.T) {
	e := newEditor(t)
	if !e.Move("1", layout.Point{X: 5, Y: 5}) {
		t.Fatal("Move() = false")
	}
	if e.CanUndo() {
		t.Error("Move() created an undo step")
	}
	if e.Move("99", layout.Point{}) {
		t.Error("Move() of unknown scene succeeded")
	}
}

func TestUpdateScene(t *testing.T) {
	e := newEditor(t)
	f := story.SceneFields{Title: "Pit", Text: "Down you go.", IsEnding: true}
	if !e.UpdateScene("2", f) {
		t.Fatal("UpdateScene() refused")
	}
	sc, _ := e.Project().Story.Scene("2")
	if sc.Fields() != f {
		t.Errorf("Fields() = %+v, want %+v", sc.Fields(), f)
	}
}

func TestImportWikitext(t *testing.T) {
	e := newEditor(t)
	markup := wikitext.Export(story.Sample())

	e.Select("1")
	report, err := e.ImportWikitext(context.Background(), markup)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("warnings = %v", report.Warnings)
	}
	p := e.Project()
	if p.Story.SceneCount() != 4 || p.Story.EdgeCount() != 3 {
		t.Errorf("imported %d scenes, %d edges", p.Story.SceneCount(), p.Story.EdgeCount())
	}
	if sc, _ := p.Story.Scene("3"); !sc.IsGoodEnding {
		t.Error("good ending not carried over from the previous story")
	}
	if len(p.Positions) != 4 {
		t.Errorf("positions = %d, want 4", len(p.Positions))
	}
	if e.Selected() != "" {
		t.Error("import kept the selection")
	}
	if !e.CanUndo() {
		t.Error("import is not an undo step")
	}
}

func TestFailedImportKeepsModel(t *testing.T) {
	e := newEditor(t)
	e.Select("1")
	before := e.Export(context.Background())

	_, err := e.ImportWikitext(context.Background(), "just some prose")
	if !swerrors.Is(err, swerrors.ErrCodeNoScenes) {
		t.Fatalf("ImportWikitext() error = %v, want %s", err, swerrors.ErrCodeNoScenes)
	}
	if after := e.Export(context.Background()); after != before {
		t.Error("failed import changed the story")
	}
	if e.Selected() != "1" {
		t.Error("failed import cleared the selection")
	}
	if e.CanUndo() {
		t.Error("failed import created an undo step")
	}
}

func TestAutoLayout(t *testing.T) {
	e := newEditor(t)
	e.Move("3", layout.Point{X: -500, Y: -500})
	if err := e.AutoLayout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := e.Project().Position("3"); got != (layout.Point{X: 640, Y: 0}) {
		t.Errorf("position of 3 = %v, want layered rank 2", got)
	}
	if !e.Undo() {
		t.Fatal("AutoLayout() is not an undo step")
	}
	if got := e.Project().Position("3"); got != (layout.Point{X: -500, Y: -500}) {
		t.Errorf("position after undo = %v", got)
	}
}

func TestLoadProjectClearsHistory(t *testing.T) {
	e := newEditor(t)
	e.AddChoice("2", "Retry")
	e.NewProject("Blank", false)
	if e.CanUndo() {
		t.Error("NewProject() kept history")
	}
	if n := e.Project().Story.SceneCount(); n != 1 {
		t.Errorf("scenes = %d, want 1", n)
	}
	if !strings.HasPrefix(e.Export(context.Background()), "{{#switch:{{Get}}") {
		t.Error("Export() lost the switch header")
	}
}
