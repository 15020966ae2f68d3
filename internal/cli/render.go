package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/cache"
	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/render"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
	formatPDF = "pdf"
	formatPNG = "png"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string
	format  string
	excerpt int
	scale   float64
	noCache bool
}

// validFormats is the set of supported render formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatPDF: true, formatPNG: true}

func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'svg', 'dot', 'pdf' or 'png')", f)
	}
	return nil
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, scale: 2}
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw a story graph with Graphviz",
		Long: `Draw a story graph with Graphviz. Scenes are boxes coloured by kind (start,
good ending, bad ending), choices are numbered arrows and endings point back
to the start with a dashed arrow.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.format = strings.ToLower(opts.format)
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
		ValidArgsFunction: completeStoryFiles,
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input with the format's extension, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, pdf, png")
	cmd.Flags().IntVar(&opts.excerpt, "excerpt", 0, "show up to this many characters of scene text in each box")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	p, report, err := c.loadProject(ctx, path, "")
	if err != nil {
		return err
	}
	printReport(report)

	dot := render.ToDOT(p.Story, render.Options{
		Direction: layout.Direction(cfg.Layout.Direction),
		Excerpt:   opts.excerpt,
	})

	var data []byte
	if opts.format == formatDOT {
		data = []byte(dot)
	} else {
		data, err = c.renderArtifact(ctx, dot, opts)
		if err != nil {
			return err
		}
	}

	out := opts.output
	if out == "" {
		out = swapExt(path, "."+opts.format)
	}
	if err := writeOutput(out, data); err != nil {
		return err
	}
	if out != "-" {
		printSuccess("Rendered %d scenes", p.Story.SceneCount())
		printFile(out)
	}
	return nil
}

// renderArtifact draws dot in opts.format, serving repeated renders of the
// same graph from the render cache.
func (c *CLI) renderArtifact(ctx context.Context, dot string, opts renderOpts) ([]byte, error) {
	rc := c.renderCache(opts.noCache)
	defer rc.Close()

	artifact := cache.ArtifactOpts{Format: opts.format}
	if opts.format == formatPNG {
		artifact.Scale = opts.scale
	}
	key := cache.ArtifactKey(dot, artifact)
	if data, hit, err := rc.Get(ctx, key); err == nil && hit {
		c.Logger.Debug("render cache hit", "format", opts.format)
		return data, nil
	}

	data, err := withSpinner(ctx, "Rendering", func(ctx context.Context) ([]byte, error) {
		svg, err := render.RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		switch opts.format {
		case formatPDF:
			return render.ToPDF(ctx, svg)
		case formatPNG:
			return render.ToPNG(ctx, svg, opts.scale)
		}
		return svg, nil
	})
	if err != nil {
		return nil, err
	}
	if err := rc.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		c.Logger.Warn("render cache write failed", "error", err)
	}
	return data, nil
}

// renderCache opens the file render cache, or a null cache when disabled
// or when the cache directory is unusable.
func (c *CLI) renderCache(disabled bool) cache.Cache {
	if disabled {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(cache.DefaultDir())
	if err != nil {
		c.Logger.Warn("render cache disabled", "error", err)
		return cache.NewNullCache()
	}
	return fc
}
