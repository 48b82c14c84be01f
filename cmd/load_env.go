package cmd

import (
	"fmt"
	"path/filepath"

	"ezswitch/config/storage"
	"ezswitch/internal/envstore"
	"ezswitch/internal/shell"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loadEnvCmd)
}

var loadEnvCmd = &cobra.Command{
	Use:   "load-env",
	Short: "Print shell commands that load the dotenv backend (for shell initialization)",
	Long:  "Print export and unset lines for the variables saved by the dotenv backend. Use: eval \"$(ezswitch load-env)\"",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(current.store.Paths().Dir, envstore.DotenvFileName)
		if !storage.FileExists(path) {
			// Nothing applied yet; leave the shell alone
			return nil
		}

		vars, err := envstore.NewDotenvStore(path).Vars()
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to read dotenv file")
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		fmt.Fprint(cmd.OutOrStdout(), shell.ExportScript(envstore.ManagedVars, vars))
		return nil
	},
}
