package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the browse command: pick a stored template
// interactively and print its pins.
func (c *CLI) browseCommand() *cobra.Command {
	var location, library string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick a stored template interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := listRecords(cmd.Context(), storeLocation(location, library))
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No templates stored")
				return nil
			}

			final, err := tea.NewProgram(NewTemplateListModel(recs), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			m := final.(TemplateListModel)
			if m.Selected == nil {
				return nil
			}
			printRecord(*m.Selected)
			return nil
		},
	}
	cmd.Flags().StringVarP(&location, "store", "s", "", "template store (default $"+envStore+" or <library>_templates.yaml)")
	cmd.Flags().StringVar(&library, "library", defaultLibrary, "library used for the default store file")
	return cmd
}
