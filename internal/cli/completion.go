package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelview/pkg/palette"
)

// completionCommand creates the shell completion command.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mandelview.

Completions cover every subcommand and flag, including palette names for
--palette and for "palette show" and "palette export".

Bash:
  $ source <(mandelview completion bash)
  $ mandelview completion bash > /etc/bash_completion.d/mandelview

Zsh:
  $ mandelview completion zsh > "${fpath[1]}/_mandelview"

Fish:
  $ mandelview completion fish > ~/.config/fish/completions/mandelview.fish

PowerShell:
  PS> mandelview completion powershell | Out-String | Invoke-Expression

Start a new shell afterwards, then try "mandelview ren<TAB>" or
"mandelview explore --pal<TAB>".`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completePaletteNames completes built-in palette names.
func completePaletteNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return palette.Names(), cobra.ShellCompDirectiveNoFileComp
}
