package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/config"
	"github.com/matzehuels/storyweaver/pkg/project"
	"github.com/matzehuels/storyweaver/pkg/story"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

// execute runs the root command with args against a config that uses the
// layered engine and the file store under dir.
func execute(t *testing.T, dir string, args ...string) error {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := "[layout]\nengine = \"layered\"\n\n[store]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "store")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"new", "import", "export", "check", "layout", "render", "play", "serve", "store", "config", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestNewImportExport(t *testing.T) {
	dir := t.TempDir()
	projectPath := filepath.Join(dir, "story.json")
	if err := execute(t, dir, "new", "-o", projectPath, "--name", "Crossroads"); err != nil {
		t.Fatalf("new: %v", err)
	}
	p, err := project.Load(projectPath)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Crossroads" || p.Story.SceneCount() != 4 {
		t.Errorf("new wrote %q with %d scenes", p.Name, p.Story.SceneCount())
	}

	wikiPath := filepath.Join(dir, "story.wiki")
	if err := execute(t, dir, "export", projectPath, "-o", wikiPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(wikiPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != wikitext.Export(story.Sample()) {
		t.Errorf("export wrote:\n%s", data)
	}

	if err := execute(t, dir, "import", wikiPath); err != nil {
		t.Fatalf("import: %v", err)
	}
	imported, err := project.Load(filepath.Join(dir, "story.json"))
	if err != nil {
		t.Fatal(err)
	}
	if imported.Name != "story" || imported.Story.EdgeCount() != 3 || len(imported.Positions) != 4 {
		t.Errorf("import wrote %q with %d edges, %d positions", imported.Name, imported.Story.EdgeCount(), len(imported.Positions))
	}
}

func TestNewEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.json")
	if err := execute(t, dir, "new", "--empty", "-o", path); err != nil {
		t.Fatal(err)
	}
	p, err := project.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Story.SceneCount() != 1 {
		t.Errorf("scenes = %d, want 1", p.Story.SceneCount())
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	if err := execute(t, dir, "new", "-o", path); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, dir, "layout", path); err != nil {
		t.Fatalf("layout: %v", err)
	}
	p, err := project.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Position("0"); got.X != 0 || got.Y != 0 {
		t.Errorf("start position = %v, want origin", got)
	}
	if err := execute(t, dir, "layout", filepath.Join(dir, "story.wiki")); err == nil {
		t.Error("layout accepted a markup file")
	}
}

func TestRenderDOT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	if err := execute(t, dir, "new", "-o", path); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, dir, "render", path, "-f", "dot"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "story.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"1" -> "3" [label="1"];`) {
		t.Errorf("render wrote:\n%s", data)
	}
	if err := execute(t, dir, "render", path, "-f", "gif"); err == nil {
		t.Error("render accepted format gif")
	}
}

func TestStoreCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	if err := execute(t, dir, "new", "-o", path); err != nil {
		t.Fatal(err)
	}
	p, err := project.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := execute(t, dir, "store", "push", path); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := execute(t, dir, "store", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	pulled := filepath.Join(dir, "pulled.json")
	if err := execute(t, dir, "store", "pull", p.ID, "-o", pulled); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if got, err := project.Load(pulled); err != nil || got.ID != p.ID {
		t.Errorf("pulled %v, %v", got, err)
	}
	if err := execute(t, dir, "store", "delete", p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := execute(t, dir, "store", "delete", p.ID); err == nil {
		t.Error("deleting twice succeeded")
	}
}

func TestCheckRoundTrip(t *testing.T) {
	res, err := checkRoundTrip(wikitext.Export(story.Sample()), wikitext.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Idempotent || !res.Canonical || res.Scenes != 4 || res.Unresolved != 0 {
		t.Errorf("sample check = %+v", res)
	}

	hand := "{{#switch:{{Get}}\n|0 =\n{{text adventure\n|text = Start here.\n{{Text adventure choice|?|Wander}}\n}}\n}}"
	res, err = checkRoundTrip(hand, wikitext.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Idempotent || res.Canonical || res.Unresolved != 1 {
		t.Errorf("hand-authored check = %+v", res)
	}

	if _, err := checkRoundTrip("plain text", wikitext.Options{}); err == nil {
		t.Error("checkRoundTrip accepted text without scenes")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	if err := execute(t, dir, "new", "-o", path); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, dir, "check", path); err != nil {
		t.Errorf("check: %v", err)
	}
	garbage := filepath.Join(dir, "garbage.wiki")
	if err := os.WriteFile(garbage, []byte("nothing here"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, dir, "check", garbage); errors.Is(err, errNotIdempotent) || err == nil {
		t.Errorf("check(garbage) error = %v, want NO_SCENES", err)
	}
}

func TestMasked(t *testing.T) {
	cfg := config.Default()
	cfg.Store.RedisPassword = "hunter2"
	cfg.Store.MongoURI = "mongodb://writer:secret@db:27017"

	out := masked(cfg).String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "secret") {
		t.Errorf("masked config leaks secrets:\n%s", out)
	}
	if cfg.Store.RedisPassword != "hunter2" {
		t.Error("masked modified the original config")
	}
}

func TestFileHelpers(t *testing.T) {
	tests := []struct {
		path    string
		project bool
		base    string
	}{
		{"story.json", true, "story"},
		{"dir/Story.JSON", true, "Story"},
		{"adventure.wiki", false, "adventure"},
		{"notes", false, "notes"},
	}
	for _, tt := range tests {
		if got := isProjectFile(tt.path); got != tt.project {
			t.Errorf("isProjectFile(%q) = %v", tt.path, got)
		}
		if got := baseName(tt.path); got != tt.base {
			t.Errorf("baseName(%q) = %q", tt.path, got)
		}
	}
	if got := swapExt("a/b.wiki", ".json"); got != "a/b.json" {
		t.Errorf("swapExt() = %q", got)
	}
}

func TestProjectTable(t *testing.T) {
	out := projectTable([]project.Summary{
		project.Sample("Crossroads").Summarize(),
		project.New("Blank").Summarize(),
	})
	for _, want := range []string{"Name", "Crossroads", "Blank", "4"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestCompleteStoryFiles(t *testing.T) {
	exts, directive := completeStoryFiles(nil, nil, "")
	if len(exts) != 3 || directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("completeStoryFiles() = %v, %v", exts, directive)
	}
	if got, _ := completeStoryFiles(nil, []string{"a.json"}, ""); got != nil {
		t.Errorf("second argument completed %v", got)
	}
}
