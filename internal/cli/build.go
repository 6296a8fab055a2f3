package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellforge/pkg/cells"
	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/export"
	"github.com/matzehuels/cellforge/pkg/templatedb"
)

// buildOpts holds the flags shared by build and export.
type buildOpts struct {
	kinds   []string // cell generators, default all
	fingers []int    // finger counts per cell
	library string   // library name
	tech    string   // technology file, "" for the demo
	store   string   // template store location
	mode    string   // write mode: write, append, overwrite
	out     string   // directory for rendered views
	formats []string // view formats
}

func (o *buildOpts) addCellFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&o.fingers, "nf", []int{2, 4}, "finger counts to generate (even)")
	cmd.Flags().StringVar(&o.library, "library", defaultLibrary, "library name")
	cmd.Flags().StringVar(&o.tech, "tech", "", "technology TOML file (default $"+envTech+" or the built-in demo)")
}

// buildCommand creates the build command: generate cells and publish them
// as template records.
func (c *CLI) buildCommand() *cobra.Command {
	var formats string
	opts := buildOpts{mode: templatedb.ModeAppend.String()}

	cmd := &cobra.Command{
		Use:   "build [cell...]",
		Short: "Generate cells and publish their templates",
		Long: `Generate cells and publish their template records to a store.

Cells: ` + strings.Join(cells.Kinds(), ", ") + ` (default all).

The store is a YAML file path, redis://host/db?key=..., or
mongodb://host/db?collection=...`,
		Example: `  cellforge build nand --nf 2,4
  cellforge build --store redis://localhost:6379/0 --mode overwrite
  cellforge build tinv -o out -f svg,json`,
		ValidArgs: cells.Kinds(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.kinds = args
			opts.formats = parseFormats(formats)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), &opts)
		},
	}

	opts.addCellFlags(cmd)
	cmd.Flags().StringVarP(&opts.store, "store", "s", "", "template store (default $"+envStore+" or <library>_templates.yaml)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", opts.mode, "write mode: write, append, overwrite")
	cmd.Flags().StringVarP(&opts.out, "output", "o", "", "also write cell views to this directory")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "view format(s): svg (default), json, png, pdf (comma-separated)")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, opts *buildOpts) error {
	logger, runID := withRun(loggerFromContext(ctx))
	prog := newProgress(logger)

	mode, err := templatedb.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	lib, err := generateLibrary(withLogger(ctx, logger), opts)
	if err != nil {
		return err
	}

	location := storeLocation(opts.store, opts.library)
	if mode == templatedb.ModeWrite {
		printWarning("write mode replaces every template in %s", location)
	}
	spin := newSpinnerWithContext(ctx, "Opening "+location)
	spin.Start()
	store, err := openStore(ctx, location, logger)
	if err != nil {
		spin.StopWithError("Could not open " + location)
		return err
	}
	spin.Stop()
	defer store.Close()

	// Write mode truncates once; later cells of the same run append.
	for i, d := range lib.Designs() {
		rec, err := templatedb.FromDesign(d)
		if err != nil {
			return err
		}
		m := mode
		if mode == templatedb.ModeWrite && i > 0 {
			m = templatedb.ModeAppend
		}
		if err := store.Put(ctx, rec, m); err != nil {
			return err
		}
		printSuccess("%s", StyleHighlight.Render(d.Name()))
		printCellStats(len(d.Instances()), len(d.Elements()), cells.PinNames(d))
	}
	printDetail("Store: %s (%s)", location, templatedb.Backend(store))

	if opts.out != "" {
		if err := writeViews(lib, opts, runID); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Built %d cells", len(lib.Designs())))
	printNextStep("Inspect the store", fmt.Sprintf("%s inspect store -s %s", appName, location))
	return nil
}

// generateLibrary runs every requested generator for every finger count
// into a fresh library.
func generateLibrary(ctx context.Context, opts *buildOpts) (*database.Library, error) {
	logger := loggerFromContext(ctx)
	t, err := loadTech(techPath(opts.tech), logger)
	if err != nil {
		return nil, err
	}
	lib, err := database.NewLibrary(opts.library, t)
	if err != nil {
		return nil, err
	}
	kinds := opts.kinds
	if len(kinds) == 0 {
		kinds = cells.Kinds()
	}
	for _, kind := range kinds {
		gen, err := cells.Lookup(kind)
		if err != nil {
			return nil, err
		}
		for _, nf := range opts.fingers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if _, err := gen(lib, nf, cells.Options{Logger: logger}); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}

func writeViews(lib *database.Library, opts *buildOpts, runID string) error {
	for _, format := range opts.formats {
		var e export.Exporter
		if format == "json" {
			e = export.NewJSON(export.WithRunID(runID), export.WithIndent())
		} else {
			var err error
			if e, err = export.New(format); err != nil {
				return err
			}
		}
		paths, err := export.WriteLibrary(e, lib, opts.out)
		if err != nil {
			return err
		}
		for _, p := range paths {
			printFile(p)
		}
	}
	return nil
}

// parseFormats parses the --format flag. If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validateFormats checks every requested format against [export.Formats].
func validateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := export.New(f); err != nil {
			return fmt.Errorf("invalid format: %s (must be one of %s)", f, strings.Join(export.Formats, ", "))
		}
	}
	return nil
}
