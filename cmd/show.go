package cmd

import (
	"fmt"

	"ezswitch/config/models"
	"ezswitch/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved settings",
	Long:  "Print the saved profile settings with keys masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current.store.Load()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Settings file: %s\n\n", current.store.Paths().File)
		fmt.Fprintf(out, "Selected:      %s\n", s.Selected)
		fmt.Fprintf(out, "Claude mode:   %s\n", s.ClaudeMode)
		fmt.Fprintf(out, "zai_key:       %s\n", masked(s.ZaiKey))
		fmt.Fprintf(out, "claude_key:    %s\n", masked(s.ClaudeKey))
		fmt.Fprintf(out, "custom_url:    %s\n", orNotSet(s.CustomURL))
		fmt.Fprintf(out, "custom_key:    %s\n", masked(s.CustomKey))

		if s.Selected == models.ProfileClaude && s.ClaudeMode == models.ClaudeSubscription && s.ClaudeKey != "" {
			fmt.Fprintln(out, "\nclaude_key is kept but not used in subscription mode")
		}
		return nil
	},
}

func masked(v string) string {
	if v == "" {
		return "(not set)"
	}
	return utils.MaskToken(v)
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
