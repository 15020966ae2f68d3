package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/storyweaver/pkg/editor"
	"github.com/matzehuels/storyweaver/pkg/project"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

// isProjectFile reports whether path names a JSON project file rather than
// wikitext markup.
func isProjectFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// baseName returns the file name of path without its extension.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// swapExt replaces the extension of path with ext.
func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// loadProject reads a project file, or imports a markup file and lays it
// out. The report is nil for project files.
func (c *CLI) loadProject(ctx context.Context, path, engine string) (*project.Project, *wikitext.Report, error) {
	if isProjectFile(path) {
		p, err := project.Load(path)
		return p, nil, err
	}

	data, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	ed, err := c.newEditor(project.New(baseName(path)), engine)
	if err != nil {
		return nil, nil, err
	}
	report, err := withSpinner(ctx, "Importing "+filepath.Base(path), func(ctx context.Context) (*wikitext.Report, error) {
		return ed.ImportWikitext(ctx, string(data))
	})
	if err != nil {
		return nil, nil, err
	}
	return ed.Project(), report, nil
}

// newEditor starts an editing session with the configured layouter and
// exporter options.
func (c *CLI) newEditor(p *project.Project, engine string) (*editor.Editor, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	l, err := c.layouter(engine)
	if err != nil {
		return nil, err
	}
	return editor.New(p, editor.Options{
		Layouter:   l,
		Export:     cfg.Export.Options(),
		HistoryMax: cfg.History.Max,
		Logger:     c.Logger,
	}), nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printReport lists import warnings.
func printReport(r *wikitext.Report) {
	if r == nil {
		return
	}
	for _, w := range r.Warnings {
		printWarning("%s", w)
	}
}
