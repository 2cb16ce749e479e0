package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts. Recipe arguments
// of render and table complete to .toml files.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for survfit. Commands, flags and output
formats complete by name; recipe arguments complete to .toml files.

  bash:        source <(survfit completion bash)
  zsh:         survfit completion zsh > "${fpath[1]}/_survfit"
  fish:        survfit completion fish > ~/.config/fish/completions/survfit.fish
  powershell:  survfit completion powershell | Out-String | Invoke-Expression

Start a new shell after installing a script.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeRecipes completes positional arguments to recipe files.
func completeRecipes(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the --format flag.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"svg", "png", "pdf", "json"}, cobra.ShellCompDirectiveNoFileComp
}
