package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/survfit/pkg/compose"
	"github.com/matzehuels/survfit/pkg/export"
	"github.com/matzehuels/survfit/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output    string  // output directory
	formats   string  // comma-separated formats; empty uses the recipe's
	dpi       float64 // PNG resolution
	widthIn   float64 // physical width in inches
	heightIn  float64 // physical height in inches
	noCache   bool    // disable the artifact cache
	refresh   bool    // ignore cached entries
	combine   string  // compose every figure into this one file
	cols      int     // grid columns for --combine
	keepGoing bool    // continue past failing recipes
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: "."}

	cmd := &cobra.Command{
		Use:   "render recipe.toml [recipe.toml...]",
		Short: "Render figure recipes to SVG, PNG, PDF or JSON",
		Long: `Render runs each recipe: it estimates (or loads) the curves, builds the
figure with its risk tables and writes one file per output format, named
after the recipe.

With --combine the figures are composed into a single grid instead and
written to the given file; the format follows its extension.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeRecipes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, pdf, json (comma-separated; default from recipe)")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "PNG resolution (default from recipe, else 300)")
	cmd.Flags().Float64Var(&opts.widthIn, "width-in", 0, "physical width in inches")
	cmd.Flags().Float64Var(&opts.heightIn, "height-in", 0, "physical height in inches")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached models and artifacts")
	cmd.Flags().StringVar(&opts.combine, "combine", "", "compose all figures into one file")
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "grid columns for --combine (default: one row)")
	cmd.Flags().BoolVarP(&opts.keepGoing, "keep-going", "k", false, "continue after a recipe fails")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, recipes []string, opts renderOpts) error {
	runner, _, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var units []compose.Unit
	failed := 0
	for _, path := range recipes {
		prog := newProgress(c.Logger)
		res, err := runner.Execute(ctx, pipeline.Options{
			RecipePath: path,
			Formats:    parseFormats(opts.formats),
			DPI:        opts.dpi,
			WidthIn:    opts.widthIn,
			HeightIn:   opts.heightIn,
			Refresh:    opts.refresh,
		})
		if err != nil {
			if !opts.keepGoing {
				return fmt.Errorf("%s: %w", path, err)
			}
			printError("%s: %v", path, err)
			failed++
			continue
		}
		prog.done("Rendered " + res.Name)

		if opts.combine != "" {
			units = append(units, res.Figure)
			continue
		}
		paths, err := res.Save(opts.output)
		if err != nil {
			return err
		}
		printSuccess("%s", res.Name)
		printStats(res.Stats.Strata, res.Stats.Panels, res.CacheInfo.RenderHit)
		for _, p := range paths {
			printFile(p)
		}
	}

	if opts.combine != "" && len(units) > 0 {
		if err := combine(units, opts); err != nil {
			return err
		}
		printSuccess("Combined %d figures", len(units))
		printFile(opts.combine)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d recipes failed", failed, len(recipes))
	}
	return nil
}

// combine places units on a grid and writes the composition.
func combine(units []compose.Unit, opts renderOpts) error {
	cols := opts.cols
	if cols <= 0 {
		cols = len(units)
	}
	grid, err := compose.Grid(cols, units...)
	if err != nil {
		return err
	}
	return export.Save(grid, opts.combine, export.Options{
		DPI:      opts.dpi,
		WidthIn:  opts.widthIn,
		HeightIn: opts.heightIn,
	})
}
