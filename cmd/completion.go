package cmd

import (
	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts.
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate completion scripts for your shell.

  # Bash (add to ~/.bashrc)
  eval "$(tripgraph completion bash)"

  # Zsh (add to ~/.zshrc)
  eval "$(tripgraph completion zsh)"

  # Fish
  tripgraph completion fish | source

  # PowerShell
  tripgraph completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// formatCompletionFunc completes graph export formats.
func formatCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"tui\tInteractive graph view",
		"dot\tGraphviz DOT",
		"json\tNodes and edges as JSON",
		"svg\tSettled layout as SVG",
	}, cobra.ShellCompDirectiveNoFileComp
}

// styleCompletionFunc completes markdown styles.
func styleCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"auto", "dark", "light", "notty", "dracula", "pink"}, cobra.ShellCompDirectiveNoFileComp
}
