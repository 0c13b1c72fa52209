package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/prelims-tutor/internal/app"
	"github.com/soyeahso/prelims-tutor/internal/gateway"
	"github.com/soyeahso/prelims-tutor/internal/studyplan"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		bind        string
		forceListen bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tutor HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			// the hosting platform owns the socket in production
			if cfg.Server.Production() && !forceListen {
				log.Info().Str("env", cfg.Server.Env).Msg("production mode, not listening locally (use --force-listen to override)")
				return nil
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if cfg.StudyPlan.Path != "" {
				if err := a.Plans.Watch(); err != nil {
					log.Warn().Err(err).Msg("study plan hot reload disabled")
				}
			}

			logCountdown(a.Plans.Current(), time.Now())

			timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
			srv := gateway.New(cfg.Server, a.Service, log, gateway.WithProviderTimeout(timeout))
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override listen port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")
	cmd.Flags().BoolVar(&forceListen, "force-listen", false, "listen locally even in production mode")

	return cmd
}

func logCountdown(plan *studyplan.Plan, now time.Time) {
	days, ok := plan.DaysUntilExam(now)
	if !ok {
		return
	}
	log.Info().
		Str("examDate", plan.Overview.ExamDate).
		Int("daysLeft", days).
		Msg("UPSC Prelims countdown")
}
