package cmd

import (
	"fmt"
	"strings"

	"ezswitch/config/models"
	"ezswitch/internal/engine"

	"github.com/spf13/cobra"
)

var selectMode string

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().StringVarP(&selectMode, "mode", "m", "", "Claude mode: subscription or api")
}

var selectCmd = &cobra.Command{
	Use:   "select <zai|claude|custom>",
	Short: "Save the selected profile without applying it",
	Long:  "Change and save the selected profile. The environment is not touched until 'ezswitch apply'.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		if err := selectProfile(eng, args[0], selectMode); err != nil {
			return err
		}
		if err := eng.Save(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		edits := eng.Edits()
		msg := fmt.Sprintf("✓ Selected %s", edits.Selected)
		if edits.Selected == models.ProfileClaude {
			msg += fmt.Sprintf(" (%s)", edits.ClaudeMode)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

// selectProfile applies a profile name and an optional Claude mode to eng
func selectProfile(eng *engine.Engine, kind, mode string) error {
	k := models.ProfileKind(strings.ToLower(strings.TrimSpace(kind)))
	if err := eng.Select(k); err != nil {
		return err
	}
	if mode == "" {
		return nil
	}
	if k != models.ProfileClaude {
		return fmt.Errorf("--mode only applies to the claude profile")
	}
	m := models.ClaudeMode(strings.ToLower(strings.TrimSpace(mode)))
	if m == "apikey" || m == "api-key" {
		m = models.ClaudeAPIKey
	}
	return eng.SetClaudeMode(m)
}
