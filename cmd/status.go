package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which endpoint Claude Code currently uses",
	Long:  "Read ANTHROPIC_AUTH_TOKEN and ANTHROPIC_BASE_URL from the selected backend and report the active setup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newEngine().Refresh(commandContext(cmd), current.envs)
		if err != nil {
			return fmt.Errorf("could not determine current status: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, status.Headline())
		for _, line := range status.Details() {
			fmt.Fprintf(out, "  %s\n", line)
		}
		return nil
	},
}
