package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/audit"
)

var auditOpts struct {
	project, topic string
	since          time.Duration
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Print the scheduling event trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			if svc.Audit == nil {
				return fmt.Errorf("audit trail is disabled; set audit.backend")
			}
			q := audit.Query{ProjectID: auditOpts.project, Topic: auditOpts.topic}
			if auditOpts.since > 0 {
				q.Start = time.Now().Add(-auditOpts.since)
			}
			recs, err := svc.Audit.Query(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, recs)
		})
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditOpts.project, "project", "", "only events for this project")
	auditCmd.Flags().StringVar(&auditOpts.topic, "topic", "", "only this topic, e.g. project/rescheduled")
	auditCmd.Flags().DurationVar(&auditOpts.since, "since", 0, "only events newer than this")
	rootCmd.AddCommand(auditCmd)
}
