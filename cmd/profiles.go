package cmd

import (
	"fmt"
	"strings"

	"ezswitch/config/models"
	"ezswitch/internal/providers"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profilesCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available profiles",
	Long:  "List every profile with the fields it needs. The saved selection is marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current.store.Load()
		out := cmd.OutOrStdout()

		for _, p := range providers.List() {
			marker := " "
			if p.Kind() == s.Selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-7s %s\n", marker, p.Kind(), p.Description())

			if url := p.DefaultBaseURL(); url != "" {
				fmt.Fprintf(out, "          base URL: %s\n", url)
			}
			if p.Kind() == models.ProfileClaude {
				for _, mode := range []models.ClaudeMode{models.ClaudeSubscription, models.ClaudeAPIKey} {
					fmt.Fprintf(out, "          --mode %-12s needs: %s\n", mode, needs(p.RequiredFields(mode)))
				}
				continue
			}
			fmt.Fprintf(out, "          needs: %s\n", needs(p.RequiredFields(s.ClaudeMode)))
		}

		fmt.Fprintf(out, "\n* indicates the saved selection\n")
		return nil
	},
}

func profileTitle(kind models.ProfileKind) string {
	if p, err := providers.Get(kind); err == nil {
		return p.Label()
	}
	return string(kind)
}

func needs(fields []string) string {
	if len(fields) == 0 {
		return "nothing"
	}
	return strings.Join(fields, ", ")
}
