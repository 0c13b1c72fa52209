package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/soyeahso/prelims-tutor/internal/studyplan"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newStudyPlanCmd() *cobra.Command {
	var (
		format string
		server string
	)

	cmd := &cobra.Command{
		Use:   "studyplan",
		Short: "Print the study plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var plan *studyplan.Plan
			if server != "" {
				plan = &studyplan.Plan{}
				err := newRemote(server, 30*time.Second).do(context.Background(), http.MethodGet, "/api/study-plan", nil, plan)
				if err != nil {
					return err
				}
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				loader, err := studyplan.NewLoader(cfg.StudyPlan.Path, log)
				if err != nil {
					return err
				}
				plan = loader.Current()
			}

			var (
				data []byte
				err  error
			)
			switch format {
			case "json":
				data, err = json.MarshalIndent(plan, "", "  ")
				data = append(data, '\n')
			case "yaml":
				data, err = yaml.Marshal(plan)
			default:
				return fmt.Errorf("unknown format %q (json, yaml)", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	cmd.Flags().StringVar(&server, "server", "", "fetch from a running tutor instead of local config")

	return cmd
}
