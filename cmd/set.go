package cmd

import (
	"fmt"
	"strings"

	"ezswitch/internal/engine"
	"ezswitch/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(setCmd)
}

func fieldNames() string {
	names := make([]string, 0, len(engine.Fields()))
	for _, f := range engine.Fields() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

var setCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Save one settings field",
	Long: "Save one settings field without touching the environment. Fields: " + fieldNames() + `.
An empty value removes the field.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := engine.ParseField(args[0])
		if err != nil {
			return fmt.Errorf("%w (fields: %s)", err, fieldNames())
		}
		value := args[1]

		if field == engine.FieldCustomURL && value != "" && !utils.ValidateURL(strings.TrimSpace(value)) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %q does not look like an http(s) URL\n", value)
		}

		if err := newEngine().SetField(field, value); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		if value == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", field)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", field)
		}
		return nil
	},
}
