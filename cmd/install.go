package cmd

import (
	"fmt"
	"os"

	"ezswitch/internal/envstore"
	"ezswitch/internal/shell"

	"github.com/spf13/cobra"
)

var forceInstall bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell initialization script",
	Long:  "Add a hook to the bash or zsh rc file so new terminals load the variables saved by the dotenv backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		g := shell.NewGenerator()
		rcFile, err := shell.RCFile(os.Getenv("SHELL"), homeDir)
		if err != nil {
			block, _ := g.Generate()
			fmt.Fprintf(cmd.ErrOrStderr(), "Please manually add the following to your shell configuration file:\n\n%s", block)
			return err
		}

		result, err := g.Install(rcFile, forceInstall)
		if err != nil {
			return err
		}

		switch {
		case result.AlreadyInstalled:
			fmt.Fprintf(out, "✓ Already installed to %s\n", rcFile)
			fmt.Fprintf(out, "Run 'ezswitch install --force' to rewrite the hook\n")
		case result.Replaced:
			fmt.Fprintf(out, "✓ Hook in %s replaced\n", rcFile)
		default:
			fmt.Fprintf(out, "✓ Successfully installed to %s\n", rcFile)
		}

		if !result.AlreadyInstalled {
			fmt.Fprintf(out, "\nPlease run the following command to take effect:\n")
			fmt.Fprintf(out, "  source %s\n\n", rcFile)
			fmt.Fprintf(out, "Or reopen the terminal\n")
		}

		if current.envs.Name() != envstore.BackendDotenv {
			fmt.Fprintf(out, "\nNote: the hook only loads the %s backend; the current backend is %s\n",
				envstore.BackendDotenv, current.envs.Name())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVarP(&forceInstall, "force", "f", false, "Force reinstall, overwrite existing hook")
}
