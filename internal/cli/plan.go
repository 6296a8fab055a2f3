package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellforge/pkg/cells"
	"github.com/matzehuels/cellforge/pkg/place"
)

type planOpts struct {
	nf        int
	tech      string
	output    string // "" for stdout
	format    string // dot or svg
	dependent string // instance whose dependents to list
}

// planCommand creates the plan command, a debugging aid that shows how a
// cell's transistors are positioned relative to each other.
func (c *CLI) planCommand() *cobra.Command {
	opts := planOpts{nf: 2, format: "dot"}

	cmd := &cobra.Command{
		Use:   "plan <cell>",
		Short: "Show the placement plan of a cell",
		Long: `Show the placement plan of a cell as a Graphviz graph. Each node is an
instance; an edge points from an anchor to the instance placed against it.

--dependents lists the instances that must be re-placed after moving one.`,
		Example: `  cellforge plan nand | dot -Tpng > nand.png
  cellforge plan tinv --nf 4 -f svg -o tinv_plan.svg
  cellforge plan tinv --dependents MN0`,
		ValidArgs: cells.Kinds(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "dot" && opts.format != "svg" {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return runPlan(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().IntVar(&opts.nf, "nf", opts.nf, "finger count")
	cmd.Flags().StringVar(&opts.tech, "tech", "", "technology TOML file (default $"+envTech+" or the built-in demo)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().StringVar(&opts.dependent, "dependents", "", "list the instances placed relative to this one")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"dot", "svg"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runPlan(ctx context.Context, kind string, opts *planOpts) error {
	logger := loggerFromContext(ctx)
	t, err := loadTech(techPath(opts.tech), logger)
	if err != nil {
		return err
	}
	p, err := cells.Plan(t, kind, opts.nf, cells.Options{Logger: logger})
	if err != nil {
		return err
	}

	if opts.dependent != "" {
		deps, err := p.Dependents(opts.dependent)
		if err != nil {
			return err
		}
		if len(deps) == 0 {
			printInfo("Nothing is placed relative to %s", opts.dependent)
			return nil
		}
		printInfo("Moving %s re-places: %s", StyleHighlight.Render(opts.dependent), strings.Join(deps, ", "))
		return nil
	}

	out, err := renderPlan(ctx, p, opts.format)
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Plan for %s", cells.CellName(kind, opts.nf))
	printFile(opts.output)
	return nil
}

func renderPlan(ctx context.Context, p *place.Plan, format string) ([]byte, error) {
	dot, err := p.ToDOT()
	if err != nil {
		return nil, err
	}
	if format == "dot" {
		return []byte(dot), nil
	}
	return place.RenderSVG(ctx, dot)
}
