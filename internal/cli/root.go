package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"pomotimer/internal/config"
	"pomotimer/internal/logging"
	"pomotimer/internal/models"
)

// options holds the global flags shared by every command
type options struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the pomotimer command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "pomotimer",
		Short: "Pomodoro focus timer with guided breathing breaks",
		Long: `pomotimer alternates focus sessions and breaks.

Breaks can be spent on a guided breathing exercise or a stretch. Without a
subcommand the interactive terminal session is started.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				slog.Debug("No .env file loaded", "error", err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.pomotimer/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	runCmd := newRunCmd(opts)
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newTrayCmd(opts))
	rootCmd.AddCommand(newPatternsCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig loads the configuration and installs the logger it describes
func (o *options) loadConfig() (*models.Config, *config.Manager, error) {
	manager := config.NewManager()
	cfg, err := manager.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := o.logLevel
	if level == "" {
		level = os.Getenv(config.EnvLogLevel)
	}
	logging.Setup(cfg.Logging, level)

	return cfg, manager, nil
}
