package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellforge/pkg/cells"
)

// exportCommand creates the export command: generate cells and write their
// views without touching a store.
func (c *CLI) exportCommand() *cobra.Command {
	var formats string
	opts := buildOpts{out: "."}

	cmd := &cobra.Command{
		Use:   "export [cell...]",
		Short: "Generate cells and write SVG, JSON, PNG, or PDF views",
		Long: `Generate cells and write one file per cell and format, named <cell>.<format>.

PNG and PDF need rsvg-convert on PATH.`,
		Example: `  cellforge export nand --nf 2 -f svg,json
  cellforge export -o views -f png`,
		ValidArgs: cells.Kinds(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.kinds = args
			opts.formats = parseFormats(formats)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), &opts)
		},
	}

	opts.addCellFlags(cmd)
	cmd.Flags().StringVarP(&opts.out, "output", "o", opts.out, "output directory")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, opts *buildOpts) error {
	logger, runID := withRun(loggerFromContext(ctx))
	prog := newProgress(logger)

	lib, err := generateLibrary(withLogger(ctx, logger), opts)
	if err != nil {
		return err
	}
	if err := writeViews(lib, opts, runID); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Exported %d cells as %s", len(lib.Designs()), strings.Join(opts.formats, ", ")))
	return nil
}
