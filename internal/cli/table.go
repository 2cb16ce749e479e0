package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/survfit/pkg/pipeline"
	"github.com/matzehuels/survfit/pkg/render"
)

func (c *CLI) tableCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "table recipe.toml",
		Short: "Print a recipe's risk tables in the terminal",
		Long: `Table builds the recipe's figure and prints its risk tables, aligned to
the same time points the rendered figure uses. Nothing is written to disk.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRecipes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTable(cmd.Context(), cmd.OutOrStdout(), args[0], noCache)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runTable(ctx context.Context, w io.Writer, path string, noCache bool) error {
	runner, _, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.Options{RecipePath: path}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	m, err := runner.Estimate(ctx, opts)
	if err != nil {
		return err
	}
	fig, err := runner.Build(ctx, m, opts)
	if err != nil {
		return err
	}

	out := render.Table(fig)
	if out == "" {
		printInfo("%s has no risk tables", path)
		return nil
	}
	if title := opts.Recipe.Title; title != "" {
		fmt.Fprintln(w, StyleTitle.Render(title))
	}
	fmt.Fprintln(w, out)
	return nil
}
