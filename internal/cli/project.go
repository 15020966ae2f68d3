package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/project"
	"github.com/matzehuels/storyweaver/pkg/wikitext"
)

func (c *CLI) newCommand() *cobra.Command {
	var (
		output string
		name   string
		empty  bool
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project file",
		Long:  "Create a project file holding the crossroads sample adventure, or only a blank start scene with --empty.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := project.Sample(name)
			if empty {
				p = project.New(name)
			}
			if err := project.Save(output, p); err != nil {
				return err
			}
			printSuccess("Created %s", p.Name)
			printStats(p.Story)
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "story.json", "output project file")
	cmd.Flags().StringVar(&name, "name", "Untitled", "project name")
	cmd.Flags().BoolVar(&empty, "empty", false, "start with a blank start scene instead of the sample")
	return cmd
}

func (c *CLI) importCommand() *cobra.Command {
	var output, engine string
	cmd := &cobra.Command{
		Use:   "import <file.wiki>",
		Short: "Convert wikitext markup to a laid-out project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			p, report, err := c.loadProject(ctx, args[0], engine)
			if err != nil {
				return err
			}
			if output == "" {
				output = swapExt(args[0], ".json")
			}
			if err := project.Save(output, p); err != nil {
				return err
			}

			prog.done(fmt.Sprintf("Imported %d scenes", p.Story.SceneCount()))
			printReport(report)
			printStats(p.Story)
			printFile(output)
			return nil
		},
		ValidArgsFunction: completeStoryFiles,
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output project file (default: input with .json)")
	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: graphviz, layered (default from config)")
	return cmd
}

func (c *CLI) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <project.json|file.wiki>",
		Short: "Write a story as wikitext markup",
		Long:  "Write a story as wikitext markup. Markup input is re-imported and written back in canonical form.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, report, err := c.loadProject(ctx, args[0], "")
			if err != nil {
				return err
			}
			ed, err := c.newEditor(p, "")
			if err != nil {
				return err
			}
			if err := writeOutput(output, []byte(ed.Export(ctx))); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printReport(report)
				printSuccess("Exported %d scenes", p.Story.SceneCount())
				printFile(output)
			}
			return nil
		},
		ValidArgsFunction: completeStoryFiles,
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) layoutCommand() *cobra.Command {
	var output, engine string
	cmd := &cobra.Command{
		Use:   "layout <project.json>",
		Short: "Recompute the canvas positions of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !isProjectFile(args[0]) {
				return errors.New("layout needs a .json project file; use import for markup")
			}
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			ed, err := c.newEditor(p, engine)
			if err != nil {
				return err
			}
			prog := newProgress(loggerFromContext(ctx))
			if _, err := withSpinner(ctx, "Laying out", func(ctx context.Context) (struct{}, error) {
				return struct{}{}, ed.AutoLayout(ctx)
			}); err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			if err := project.Save(output, ed.Project()); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Laid out %d scenes", p.Story.SceneCount()))
			printFile(output)
			return nil
		},
		ValidArgsFunction: completeStoryFiles,
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output project file (default: overwrite input)")
	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: graphviz, layered (default from config)")
	return cmd
}

// =============================================================================
// Round-trip check
// =============================================================================

// checkResult summarizes a round trip through the importer and exporter.
type checkResult struct {
	Scenes     int
	Edges      int
	Unresolved int
	Report     wikitext.Report
	Canonical  bool // the input already is the exporter's output
	Idempotent bool // re-importing the export gives the same export
}

// errNotIdempotent is returned by check when exporting twice differs.
var errNotIdempotent = errors.New("round trip is not idempotent")

// checkRoundTrip imports text, exports it, and imports and exports the
// result again.
func checkRoundTrip(text string, opts wikitext.Options) (*checkResult, error) {
	first, err := wikitext.Import(text)
	if err != nil {
		return nil, err
	}
	out := wikitext.ExportWith(first.Story, opts)

	second, err := wikitext.Import(out, wikitext.WithBaseline(first.Story))
	if err != nil {
		return nil, err
	}
	again := wikitext.ExportWith(second.Story, opts)

	res := &checkResult{
		Scenes:     first.Story.SceneCount(),
		Edges:      first.Story.EdgeCount(),
		Report:     first.Report,
		Canonical:  out == text,
		Idempotent: out == again,
	}
	for _, sc := range first.Story.Scenes() {
		for i := range sc.Choices {
			if _, ok := first.Story.ChoiceTarget(sc.ID, i); !ok {
				res.Unresolved++
			}
		}
	}
	return res, nil
}

func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Check that a story survives an export/import round trip",
		Long: `Check that a story survives an export/import round trip.

Markup is imported, exported, imported and exported again. The command
reports the scene count, unresolved choices and import warnings, and fails
when the two exports differ.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			text, err := c.readMarkup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := checkRoundTrip(text, cfg.Export.Options())
			if err != nil {
				return err
			}

			printKeyValue("scenes", fmt.Sprint(res.Scenes))
			printKeyValue("edges", fmt.Sprint(res.Edges))
			printKeyValue("unresolved", fmt.Sprint(res.Unresolved))
			printKeyValue("canonical", fmt.Sprint(res.Canonical))
			printReport(&res.Report)
			if !res.Idempotent {
				printError("Re-export differs from the first export")
				return errNotIdempotent
			}
			printSuccess("Round trip is idempotent")
			return nil
		},
		ValidArgsFunction: completeStoryFiles,
	}
}

// readMarkup returns the markup of a wikitext file, or the export of a
// project file.
func (c *CLI) readMarkup(ctx context.Context, path string) (string, error) {
	if !isProjectFile(path) {
		data, err := readFile(path)
		return string(data), err
	}
	p, err := project.Load(path)
	if err != nil {
		return "", err
	}
	ed, err := c.newEditor(p, "")
	if err != nil {
		return "", err
	}
	return ed.Export(ctx), nil
}
