package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/studyplan"
	"github.com/soyeahso/prelims-tutor/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tutor status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tutor %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:   %s\n", paths.Config)
			fmt.Fprintf(out, "Data:     %s\n", paths.Data)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:   not found (using defaults and environment)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:   error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Server:   port=%d bind=%s env=%s\n", cfg.Server.Port, cfg.Server.Bind, cfg.Server.Env)

			key := "set"
			if cfg.Provider.APIKey == "" {
				key = "missing"
			}
			fmt.Fprintf(out, "Provider: %s model=%s maxTokens=%d timeout=%ds key=%s\n",
				cfg.Provider.Name, cfg.Provider.Model, cfg.Provider.MaxTokens, cfg.Provider.TimeoutSeconds, key)

			fmt.Fprintf(out, "Session:  store=%s window=%d maxTurns=%d maxSessions=%d\n",
				cfg.Session.Store, cfg.Session.Window, cfg.Session.MaxTurns, cfg.Session.MaxSessions)
			switch cfg.Session.Store {
			case config.StoreRedis:
				fmt.Fprintf(out, "Redis:    addr=%s db=%d\n", cfg.Session.Redis.Addr, cfg.Session.Redis.DB)
			case config.StoreSQLite:
				fmt.Fprintf(out, "SQLite:   %s\n", cfg.Session.SQLite.Path)
			}

			source := "built-in"
			if cfg.StudyPlan.Path != "" {
				source = cfg.StudyPlan.Path
			}
			loader, err := studyplan.NewLoader(cfg.StudyPlan.Path, log)
			if err != nil {
				fmt.Fprintf(out, "Plan:     %s (error: %v)\n", source, err)
			} else {
				plan := loader.Current()
				fmt.Fprintf(out, "Plan:     %s, exam %s", source, plan.Overview.ExamDate)
				if days, ok := plan.DaysUntilExam(time.Now()); ok {
					fmt.Fprintf(out, " (%d days left)", days)
				}
				fmt.Fprintln(out)
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
