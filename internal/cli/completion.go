package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	var noDesc bool
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cellforge. Cell names, formats,
and write modes complete too.

  bash:        source <(cellforge completion bash)
  zsh:         cellforge completion zsh > "${fpath[1]}/_cellforge"
  fish:        cellforge completion fish | source
  powershell:  cellforge completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, !noDesc)
			case "zsh":
				if noDesc {
					return root.GenZshCompletionNoDesc(os.Stdout)
				}
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, !noDesc)
			case "powershell":
				if noDesc {
					return root.GenPowerShellCompletion(os.Stdout)
				}
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit completion descriptions")

	return cmd
}

// registerCompletions adds flag value completions shared by several commands.
func registerCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	if cmd.Flags().Lookup("mode") != nil {
		_ = cmd.RegisterFlagCompletionFunc("mode", fixed("write", "append", "overwrite"))
	}
	if cmd.Flags().Lookup("format") != nil && cmd.Name() != "plan" {
		_ = cmd.RegisterFlagCompletionFunc("format", fixed("svg", "json", "png", "pdf"))
	}
	if cmd.Flags().Lookup("tech") != nil {
		_ = cmd.RegisterFlagCompletionFunc("tech", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
		})
	}
}
