package cli

import (
	"fmt"

	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "UPSC Prelims tutor chat service",
		Long:  "tutor serves a chat API that relays questions to an LLM with a UPSC Prelims tutor persona and a 16-week study plan.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			log = logging.New(nil, resolveLevel(""))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.tutor/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newStudyPlanCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// resolveLevel picks the --log-level flag, then the configured level, then info.
func resolveLevel(configured string) string {
	switch {
	case logLevel != "":
		return logLevel
	case configured != "":
		return configured
	default:
		return "info"
	}
}

// loadConfig reads the config file, rebuilds the logger from its logging
// section and places a relative SQLite file under the data directory.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	log = logging.NewWithStyle(cfg.Logging.ConsoleStyle, resolveLevel(cfg.Logging.Level))

	if resolved := paths.ResolveSQLitePath(cfg.Session.SQLite.Path); resolved != cfg.Session.SQLite.Path {
		if err := paths.EnsureDirs(); err != nil {
			return cfg, fmt.Errorf("creating data directory: %w", err)
		}
		cfg.Session.SQLite.Path = resolved
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
