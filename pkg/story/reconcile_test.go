package story

import (
	"testing"
)

// fork builds a story whose start scene has three choices wired to A, B, C.
func fork(t *testing.T) *Story {
	t.Helper()
	s := New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.Insert(Scene{ID: "0", NumericID: 0, Choices: []Choice{{Text: "to A"}, {Text: "to B"}, {Text: "to C"}}}))
	must(s.Insert(Scene{ID: "A", NumericID: 1}))
	must(s.Insert(Scene{ID: "B", NumericID: 2}))
	must(s.Insert(Scene{ID: "C", NumericID: 3}))
	must(s.AddEdge(Edge{Source: "0", Handle: 0, Target: "A"}))
	must(s.AddEdge(Edge{Source: "0", Handle: 1, Target: "B"}))
	must(s.AddEdge(Edge{Source: "0", Handle: 2, Target: "C"}))
	return s
}

func targetOf(t *testing.T, s *Story, source string, index int) string {
	t.Helper()
	sc, ok := s.ChoiceTarget(source, index)
	if !ok {
		return ""
	}
	return sc.ID
}

func TestDeleteChoiceRenumbers(t *testing.T) {
	s := fork(t)

	if !s.DeleteChoice("0", 1) {
		t.Fatal("DeleteChoice() = false")
	}

	start, _ := s.Scene("0")
	if len(start.Choices) != 2 {
		t.Fatalf("choices = %d, want 2", len(start.Choices))
	}
	if start.Choices[0].Text != "to A" || start.Choices[1].Text != "to C" {
		t.Errorf("choices = %v", start.Choices)
	}
	if got := targetOf(t, s, "0", 0); got != "A" {
		t.Errorf("choice-0 target = %q, want A", got)
	}
	if got := targetOf(t, s, "0", 1); got != "C" {
		t.Errorf("choice-1 target = %q, want C", got)
	}
	for _, e := range s.Edges() {
		if e.Handle.Index() >= len(start.Choices) {
			t.Errorf("stale handle %s left on edge %s", e.Handle, e.ID())
		}
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDeleteChoiceLeavesOtherScenes(t *testing.T) {
	s := fork(t)
	_, _ = s.AddChoice("A", "onward")
	_, _ = s.AddChoice("A", "sideways")
	s.Connect("A", 1, "C")

	s.DeleteChoice("0", 0)

	if got := targetOf(t, s, "A", 1); got != "C" {
		t.Errorf("A choice-1 target = %q, want C", got)
	}
}

func TestDeleteChoiceRefused(t *testing.T) {
	tests := []struct {
		name  string
		scene string
		index int
	}{
		{"UnknownScene", "nope", 0},
		{"Negative", "0", -1},
		{"PastEnd", "0", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fork(t)
			if s.DeleteChoice(tt.scene, tt.index) {
				t.Error("DeleteChoice() = true, want false")
			}
			if s.EdgeCount() != 3 {
				t.Errorf("edges = %d, want 3", s.EdgeCount())
			}
		})
	}
}

func TestConnectReplaces(t *testing.T) {
	s := fork(t)

	if !s.Connect("0", 0, "C") {
		t.Fatal("Connect() = false")
	}

	count := 0
	for _, e := range s.Edges() {
		if e.Source == "0" && e.Handle == 0 {
			count++
			if e.Target != "C" {
				t.Errorf("target = %q, want C", e.Target)
			}
		}
	}
	if count != 1 {
		t.Errorf("edges on choice-0 = %d, want 1", count)
	}
	if s.EdgeCount() != 3 {
		t.Errorf("edges = %d, want 3", s.EdgeCount())
	}
}

func TestConnectRefused(t *testing.T) {
	tests := []struct {
		name   string
		source string
		handle Handle
		target string
	}{
		{"SelfLoop", "0", 0, "0"},
		{"UnknownSource", "x", 0, "A"},
		{"UnknownTarget", "0", 0, "x"},
		{"NoHandle", "0", NoHandle, "A"},
		{"OutOfRange", "0", 3, "A"},
		{"SceneWithoutChoices", "A", 0, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fork(t)
			before := s.Edges()
			if s.Connect(tt.source, tt.handle, tt.target) {
				t.Error("Connect() = true, want false")
			}
			after := s.Edges()
			if len(before) != len(after) {
				t.Fatalf("edges changed: %d -> %d", len(before), len(after))
			}
			for i := range before {
				if before[i] != after[i] {
					t.Errorf("edge %d changed: %v -> %v", i, before[i], after[i])
				}
			}
		})
	}
}

func TestDisconnect(t *testing.T) {
	s := fork(t)
	if !s.Disconnect("0", 1) {
		t.Fatal("Disconnect() = false")
	}
	if s.Disconnect("0", 1) {
		t.Error("second Disconnect() = true")
	}
	if s.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", s.EdgeCount())
	}
}

func TestDeleteScene(t *testing.T) {
	s := fork(t)
	_, _ = s.AddChoice("B", "back")
	s.Connect("B", 0, "A")

	if !s.DeleteScene("B") {
		t.Fatal("DeleteScene() = false")
	}
	if _, ok := s.Scene("B"); ok {
		t.Error("scene B still present")
	}
	for _, e := range s.Edges() {
		if e.Source == "B" || e.Target == "B" {
			t.Errorf("edge %s still references B", e.ID())
		}
	}
	if s.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", s.EdgeCount())
	}
	// The dangling choice on the start scene stays, unconnected.
	start, _ := s.Scene("0")
	if len(start.Choices) != 3 {
		t.Errorf("start choices = %d, want 3", len(start.Choices))
	}
}

func TestDeleteStartSceneRefused(t *testing.T) {
	s := Sample()
	if s.DeleteScene("0") {
		t.Fatal("DeleteScene(start) = true")
	}
	if s.SceneCount() != 4 || s.EdgeCount() != 3 {
		t.Errorf("model changed: %d scenes, %d edges", s.SceneCount(), s.EdgeCount())
	}
	if s.DeleteScene("missing") {
		t.Error("DeleteScene(missing) = true")
	}
}

func TestAddScene(t *testing.T) {
	s := Sample()
	sc := s.AddScene()
	if sc.NumericID != 4 || sc.ID != "4" {
		t.Errorf("AddScene() = %s/%d, want 4/4", sc.ID, sc.NumericID)
	}

	// An unrelated scene already owns ID "5".
	_ = s.Insert(Scene{ID: "5", NumericID: 9})
	next := s.AddScene()
	if next.NumericID != 10 {
		t.Errorf("NumericID = %d, want 10", next.NumericID)
	}
	_ = s.Insert(Scene{ID: "11", NumericID: 20})
	again := s.AddScene()
	if again.ID != "21" {
		t.Errorf("ID = %q, want 21", again.ID)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestAddSceneIDCollision(t *testing.T) {
	s := New()
	_ = s.Insert(Scene{ID: "1", NumericID: 0})
	sc := s.AddScene()
	if sc.NumericID != 1 || sc.ID != "1-1" {
		t.Errorf("AddScene() = %s/%d, want 1-1/1", sc.ID, sc.NumericID)
	}
}

func TestDuplicateScene(t *testing.T) {
	s := Sample()
	dup, ok := s.DuplicateScene("0")
	if !ok {
		t.Fatal("DuplicateScene() = false")
	}
	if dup.NumericID != 4 {
		t.Errorf("NumericID = %d, want 4", dup.NumericID)
	}
	if len(dup.Choices) != 2 {
		t.Errorf("choices = %d, want 2", len(dup.Choices))
	}
	if got := targetOf(t, s, dup.ID, 1); got != "2" {
		t.Errorf("duplicate choice-1 target = %q, want 2", got)
	}
	if len(s.Incoming(dup.ID)) != 0 {
		t.Error("duplicate received incoming edges")
	}

	dup.Choices[0].Text = "changed"
	orig, _ := s.Scene("0")
	if orig.Choices[0].Text != "Go left." {
		t.Error("duplicate shares choices with original")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if _, ok := s.DuplicateScene("missing"); ok {
		t.Error("DuplicateScene(missing) = true")
	}
}

func TestChoiceEditing(t *testing.T) {
	s := NewWithStart()
	idx, ok := s.AddChoice("0", "first")
	if !ok || idx != 0 {
		t.Fatalf("AddChoice() = %d, %v", idx, ok)
	}
	if !s.SetChoiceText("0", 0, "renamed") {
		t.Fatal("SetChoiceText() = false")
	}
	if s.SetChoiceText("0", 1, "nope") {
		t.Error("SetChoiceText(out of range) = true")
	}
	if _, ok := s.AddChoice("missing", "x"); ok {
		t.Error("AddChoice(missing) = true")
	}
	sc, _ := s.Scene("0")
	if sc.Choices[0].Text != "renamed" {
		t.Errorf("text = %q", sc.Choices[0].Text)
	}
}

func TestUpdateScene(t *testing.T) {
	s := Sample()
	f := SceneFields{Title: "Pit", Text: "Down.", IsEnding: true, StartOverText: "Again"}
	if !s.UpdateScene("2", f) {
		t.Fatal("UpdateScene() = false")
	}
	sc, _ := s.Scene("2")
	if sc.Fields() != f {
		t.Errorf("Fields() = %+v, want %+v", sc.Fields(), f)
	}
	if sc.NumericID != 2 {
		t.Errorf("NumericID = %d, want 2", sc.NumericID)
	}
	if s.UpdateScene("missing", f) {
		t.Error("UpdateScene(missing) = true")
	}
}

func TestUpdateSceneStartIsNeverEnding(t *testing.T) {
	s := NewWithStart()
	f := SceneFields{Text: "Begin.", IsEnding: true, IsGoodEnding: true, StartOverText: "Again"}
	if !s.UpdateScene("0", f) {
		t.Fatal("UpdateScene(start) = false")
	}
	sc, _ := s.Start()
	if sc.IsEnding || sc.IsGoodEnding {
		t.Errorf("start scene flags = ending %v, good %v", sc.IsEnding, sc.IsGoodEnding)
	}
	if sc.Text != "Begin." || sc.Kind() != KindStart {
		t.Errorf("start scene = %+v", sc.Fields())
	}
}
