package cmd

import (
	"errors"
	"fmt"

	"ezswitch/config/models"
	"ezswitch/config/validation"
	"ezswitch/internal/engine"
	"ezswitch/internal/envstore"
	"ezswitch/internal/utils"

	"github.com/spf13/cobra"
)

var (
	applyMode   string
	applyKey    string
	applyURL    string
	applyDryRun bool
)

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyMode, "mode", "m", "", "Claude mode: subscription or api")
	applyCmd.Flags().StringVarP(&applyKey, "key", "k", "", "save this API key for the profile before applying")
	applyCmd.Flags().StringVarP(&applyURL, "url", "u", "", "save this base URL for the custom profile before applying")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "print the environment changes without making them")
}

var applyCmd = &cobra.Command{
	Use:   "apply [zai|claude|custom]",
	Short: "Apply the selected profile to the user environment",
	Long: `Write ANTHROPIC_AUTH_TOKEN and ANTHROPIC_BASE_URL for the selected profile.
With a profile argument, that profile is selected first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			if err := selectProfile(eng, args[0], applyMode); err != nil {
				return err
			}
		} else if applyMode != "" {
			if err := selectProfile(eng, string(eng.Edits().Selected), applyMode); err != nil {
				return err
			}
		}

		if err := applyFlagFields(cmd, eng); err != nil {
			return err
		}

		if applyDryRun {
			return dryRun(cmd, eng)
		}

		result := eng.Apply(commandContext(cmd), current.envs)
		if err := result.Err; err != nil {
			var ve *validation.ValidationError
			if errors.As(err, &ve) {
				return fmt.Errorf("missing %s: set it with 'ezswitch set %s <value>' or --key/--url", ve.Field, ve.Field)
			}
			if envstore.IsTimeout(err) {
				return fmt.Errorf("timed out while updating the environment: %w", err)
			}
			return fmt.Errorf("failed to update the environment: %w", err)
		}

		if host := appliedHost(result.Ops); host != "" {
			fmt.Fprintf(out, "✓ %s configuration applied (%s)\n", profileTitle(result.Profile), host)
		} else {
			fmt.Fprintf(out, "✓ %s configuration applied\n", profileTitle(result.Profile))
		}
		for _, op := range result.Ops {
			fmt.Fprintf(out, "  %s\n", op)
		}
		if result.SaveErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: settings were not saved: %v\n", result.SaveErr)
		}
		if result.StatusRead {
			fmt.Fprintf(out, "\n%s\n", result.Status.Headline())
		}
		fmt.Fprintf(out, "\n%s\n", restartReminder)
		if current.envs.Name() == envstore.BackendDotenv {
			fmt.Fprintln(out, "Run 'ezswitch install' once so new shells load the dotenv file.")
		}
		return nil
	},
}

// applyFlagFields saves --key and --url into the fields of the selected
// profile
func applyFlagFields(cmd *cobra.Command, eng *engine.Engine) error {
	edits := eng.Edits()

	if cmd.Flags().Changed("url") {
		if edits.Selected != models.ProfileCustom {
			return fmt.Errorf("--url only applies to the custom profile")
		}
		if err := eng.SetField(engine.FieldCustomURL, applyURL); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}

	if cmd.Flags().Changed("key") {
		var field engine.Field
		switch edits.Selected {
		case models.ProfileZai:
			field = engine.FieldZaiKey
		case models.ProfileCustom:
			field = engine.FieldCustomKey
		case models.ProfileClaude:
			if edits.ClaudeMode != models.ClaudeAPIKey {
				return fmt.Errorf("--key needs --mode api for the claude profile")
			}
			field = engine.FieldClaudeKey
		}
		if err := eng.SetField(field, applyKey); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}
	return nil
}

func dryRun(cmd *cobra.Command, eng *engine.Engine) error {
	profile := eng.Profile()
	if err := eng.Validate(profile); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Would apply %s configuration:\n", profileTitle(profile.Kind()))
	for _, op := range eng.ToEnvOps(profile) {
		fmt.Fprintf(out, "  %s\n", op)
	}
	return nil
}

// appliedHost returns the host of the base URL set by ops, if any
func appliedHost(ops []envstore.Op) string {
	for _, op := range ops {
		if op.Kind == envstore.OpSet && op.Name == envstore.BaseURLVar {
			return utils.ExtractHost(op.Value)
		}
	}
	return ""
}
