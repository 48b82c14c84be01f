package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ezswitch/config"
	"ezswitch/internal/engine"
	"ezswitch/internal/envstore"
	"ezswitch/internal/logging"
	"ezswitch/internal/tui"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Persistent flags
var (
	backendFlag   string
	configDirFlag string
	logLevelFlag  string
)

const restartReminder = "Close and reopen VS Code or your terminal for the change to take effect."

// app holds what every command needs once flags are parsed
type app struct {
	cfg    *config.AppConfig
	store  *config.Store
	envs   envstore.Store
	closer io.Closer
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "ezswitch",
	Short: "Switch Claude Code between z.ai, Claude and custom endpoints",
	Long: `ezswitch sets ANTHROPIC_AUTH_TOKEN and ANTHROPIC_BASE_URL for your user account
so that Claude Code talks to z.ai, Anthropic or any compatible endpoint.

Run without arguments to open the interactive form.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsTerminal() {
			return cmd.Help()
		}
		return runUI()
	},
}

func init() {
	cobra.OnFinalize(teardown)

	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "",
		fmt.Sprintf("environment backend (%s; default %s)", strings.Join(envstore.Backends(), ", "), envstore.DefaultBackend()))
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "settings directory (default ~/.claude_ez_switch)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level written to ezswitch.log")
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version

	rootCmd.SetVersionTemplate(`ezswitch {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	return rootCmd.Execute()
}

// setup loads the app configuration and builds the settings store and the
// environment backend. Flags win over EZSWITCH_* variables.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return err
	}
	if configDirFlag != "" {
		cfg.ConfigDir = configDirFlag
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	paths, err := cfg.Paths()
	if err != nil {
		return err
	}

	closer, err := logging.Setup(paths.Dir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
	}

	backend, err := envstore.New(cfg.Backend, envstore.Options{
		ConfigDir:          paths.Dir,
		ClaudeSettingsPath: cfg.ClaudeSettingsPath,
	})
	if err != nil {
		closer.Close()
		return err
	}

	current = &app{
		cfg:    cfg,
		store:  config.NewStore(paths),
		envs:   envstore.WithTimeouts(backend, cfg.MutationTimeout, cfg.QueryTimeout),
		closer: closer,
	}

	log.Debug().
		Str("command", cmd.Name()).
		Str("backend", current.envs.Name()).
		Str("config_dir", paths.Dir).
		Msg("starting")
	return nil
}

func teardown() {
	if current != nil && current.closer != nil {
		current.closer.Close()
	}
	current = nil
}

func newEngine() *engine.Engine {
	return engine.New(current.store)
}

func runUI() error {
	return tui.Run(newEngine(), current.envs)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
