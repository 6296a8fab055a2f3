package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellforge/pkg/tech"
	"github.com/matzehuels/cellforge/pkg/templatedb"
)

// inspectCommand groups the read-only listing commands.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List technology contents or stored templates",
	}

	cmd.AddCommand(c.inspectTechCommand())
	cmd.AddCommand(c.inspectStoreCommand())
	cmd.AddCommand(c.inspectTemplateCommand())

	return cmd
}

func (c *CLI) inspectTechCommand() *cobra.Command {
	var (
		path   string
		source bool
	)
	cmd := &cobra.Command{
		Use:   "tech",
		Short: "List the templates and grids of a technology",
		Example: `  cellforge inspect tech --tech mytech.toml
  cellforge inspect tech --source > mytech.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source {
				_, err := os.Stdout.Write(tech.DemoSource())
				return err
			}
			t, err := loadTech(techPath(path), loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			printTech(t)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "tech", "", "technology TOML file (default $"+envTech+" or the built-in demo)")
	cmd.Flags().BoolVar(&source, "source", false, "print the built-in demo technology file")
	return cmd
}

func printTech(t *tech.Tech) {
	fmt.Println(StyleTitle.Render("Technology " + t.Name()))

	var rows [][]string
	for _, name := range t.TemplateNames() {
		tmpl, _ := t.Template(name)
		var params []string
		for _, p := range tmpl.ParamSpecs() {
			params = append(params, p.Name)
		}
		var pins []string
		for _, id := range tmpl.PinIDs() {
			pins = append(pins, string(id))
		}
		rows = append(rows, []string{name, strings.Join(params, " "), strings.Join(pins, " ")})
	}
	writeTable(os.Stdout, []string{"Template", "Params", "Pins"}, rows)

	grids := t.Grids()
	rows = rows[:0]
	for _, name := range grids.PlacementNames() {
		g, _ := grids.Placement(name)
		rows = append(rows, []string{name, "placement", pitch(g.X.Range, len(g.X.Elements)), pitch(g.Y.Range, len(g.Y.Elements)), "", ""})
	}
	for _, name := range grids.RoutingNames() {
		g, _ := grids.Routing(name)
		rows = append(rows, []string{name, "routing", pitch(g.X.Range, len(g.X.Elements)), pitch(g.Y.Range, len(g.Y.Elements)),
			g.HLayer + "/" + g.VLayer, g.Via})
	}
	writeTable(os.Stdout, []string{"Grid", "Kind", "X", "Y", "Layers H/V", "Via"}, rows)
}

// pitch formats an axis as its range and track count, e.g. "100" or "100/2".
func pitch(rng, elements int) string {
	if elements == 1 {
		return strconv.Itoa(rng)
	}
	return fmt.Sprintf("%d/%d", rng, elements)
}

func (c *CLI) inspectStoreCommand() *cobra.Command {
	var location, library string
	cmd := &cobra.Command{
		Use:     "store",
		Short:   "List the template records in a store",
		Example: `  cellforge inspect store -s redis://localhost:6379/0`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := listRecords(cmd.Context(), storeLocation(location, library))
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No templates stored")
				return nil
			}
			printRecords(recs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&location, "store", "s", "", "template store (default $"+envStore+" or <library>_templates.yaml)")
	cmd.Flags().StringVar(&library, "library", defaultLibrary, "library used for the default store file")
	return cmd
}

func listRecords(ctx context.Context, location string) ([]templatedb.Record, error) {
	store, err := openStore(ctx, location, loggerFromContext(ctx))
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(ctx)
}

func printRecords(recs []templatedb.Record) {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		b := r.Bounds.Rect()
		rows[i] = []string{r.Cell, r.Library, fmt.Sprintf("%d x %d", b.Width(), b.Height()), strconv.Itoa(len(r.Pins)), shortDigest(r.Digest)}
	}
	writeTable(os.Stdout, []string{"Cell", "Library", "Size", "Pins", "Digest"}, rows)
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func (c *CLI) inspectTemplateCommand() *cobra.Command {
	var location, library string
	cmd := &cobra.Command{
		Use:   "template <cell>",
		Short: "Show the pins of one stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, storeLocation(location, library), loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer store.Close()
			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			printRecord(rec)
			return nil
		},
	}
	cmd.Flags().StringVarP(&location, "store", "s", "", "template store (default $"+envStore+" or <library>_templates.yaml)")
	cmd.Flags().StringVar(&library, "library", defaultLibrary, "library used for the default store file")
	return cmd
}

func printRecord(rec templatedb.Record) {
	fmt.Println(StyleTitle.Render(rec.Cell))
	printKeyValue("Library", rec.Library)
	printKeyValue("Bounds", rec.Bounds.Rect().String())
	printKeyValue("Digest", rec.Digest)

	rows := make([][]string, len(rec.Pins))
	for i, p := range rec.Pins {
		rows[i] = []string{p.Name, p.Net, p.Layer, p.Grid, p.MN.Rect().String(), p.XY.Rect().String()}
	}
	writeTable(os.Stdout, []string{"Pin", "Net", "Layer", "Grid", "MN", "XY"}, rows)
}
