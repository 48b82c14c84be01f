package cmd

import (
	"fmt"

	"ezswitch/internal/envstore"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the Claude settings file from its latest backup",
	Long:  "Put back ~/.claude/settings.json as it was before the last write by the claude-settings backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := current.cfg.ClaudeSettingsPath
		if path == "" {
			var err error
			if path, err = envstore.DefaultClaudeSettingsPath(); err != nil {
				return err
			}
		}

		if err := envstore.NewClaudeSettingsStore(path).Restore(); err != nil {
			return fmt.Errorf("failed to restore %s: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %s from the latest backup\n", path)
		return nil
	},
}
