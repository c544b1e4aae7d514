package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/capacity"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/phases"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/store"
	"github.com/canada7700/finish-line-calendar-app-sub000/pkg/export"
)

var phasesOpts struct{ project, from, to, format string }

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Print the phase bars of every project",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseDateFlag("from", phasesOpts.from)
		if err != nil {
			return err
		}
		to, err := parseDateFlag("to", phasesOpts.to)
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			var list []model.Project
			if phasesOpts.project != "" {
				p, err := svc.Store.GetProject(ctx, phasesOpts.project)
				if err != nil {
					return err
				}
				list = []model.Project{p}
			} else if list, err = svc.Store.ListProjects(ctx); err != nil {
				return err
			}
			out := svc.Generator.Generate(list)
			if !from.IsZero() || !to.IsZero() {
				if to.IsZero() {
					to = model.NewDate(9999, 12, 31)
				}
				out = phases.Overlapping(out, from, to)
			}
			return export.WritePhases(cmd.OutOrStdout(), phasesOpts.format, out)
		})
	},
}

var hoursOpts struct{ project, member, from, to, format string }

var hoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Print booked hour blocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseDateFlag("from", hoursOpts.from)
		if err != nil {
			return err
		}
		to, err := parseDateFlag("to", hoursOpts.to)
		if err != nil {
			return err
		}
		f := store.HourFilter{ProjectID: hoursOpts.project, TeamMemberID: hoursOpts.member, From: from, To: to}
		return withService(func(ctx context.Context, svc *app.Service) error {
			list, err := svc.Store.QueryHourAllocations(ctx, f)
			if err != nil {
				return err
			}
			return export.WriteHours(cmd.OutOrStdout(), hoursOpts.format, list)
		})
	},
}

var scheduleOpts struct{ phase string }

var scheduleCmd = &cobra.Command{
	Use:   "schedule <project-id>",
	Short: "Allocate phase hours against daily capacity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			var results []capacity.Result
			if scheduleOpts.phase != "" {
				kind, err := parsePhaseFlag(scheduleOpts.phase)
				if err != nil {
					return err
				}
				res, err := svc.Capacity.SchedulePhase(ctx, args[0], kind)
				if err != nil {
					return err
				}
				results = append(results, res)
			} else {
				var err error
				if results, err = svc.Capacity.ScheduleProject(ctx, args[0]); err != nil {
					return err
				}
			}
			return printJSON(cmd, results)
		})
	},
}

var assignOpts struct {
	phase, member string
	hours         int
	clear         bool
}

var assignCmd = &cobra.Command{
	Use:   "assign <project-id>",
	Short: "Book workers into hour blocks for a phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parsePhaseFlag(assignOpts.phase)
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			if assignOpts.clear {
				n, err := svc.Hours.ClearPhase(ctx, args[0], kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d hour blocks\n", n)
				return nil
			}
			hours := assignOpts.hours
			var a any
			if assignOpts.member != "" {
				a, err = svc.Hours.AssignMember(ctx, args[0], assignOpts.member, kind, hours)
			} else {
				a, err = svc.Hours.AutoFill(ctx, args[0], kind, hours)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, a)
		})
	},
}

var reportOpts struct{ from, to string }

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print capacity utilization per phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseDateFlag("from", reportOpts.from)
		if err != nil {
			return err
		}
		to, err := parseDateFlag("to", reportOpts.to)
		if err != nil {
			return err
		}
		if from.IsZero() {
			return fmt.Errorf("--from is required")
		}
		if to.IsZero() {
			to = from.AddDays(app.UtilizationWindow - 1)
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			rep, err := svc.Capacity.Utilization(ctx, from, to)
			if err != nil {
				return err
			}
			return printJSON(cmd, rep)
		})
	},
}

var unscheduledCmd = &cobra.Command{
	Use:   "unscheduled [project-id]",
	Short: "List hours that did not fit into capacity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			list, err := svc.Store.ListUnscheduled(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		})
	},
}

func init() {
	phasesCmd.Flags().StringVar(&phasesOpts.project, "project", "", "only this project")
	phasesCmd.Flags().StringVar(&phasesOpts.from, "from", "", "first visible date")
	phasesCmd.Flags().StringVar(&phasesOpts.to, "to", "", "last visible date")
	phasesCmd.Flags().StringVar(&phasesOpts.format, "format", "json", "output format: json or csv")

	hoursCmd.Flags().StringVar(&hoursOpts.project, "project", "", "only this project")
	hoursCmd.Flags().StringVar(&hoursOpts.member, "member", "", "only this team member")
	hoursCmd.Flags().StringVar(&hoursOpts.from, "from", "", "first day")
	hoursCmd.Flags().StringVar(&hoursOpts.to, "to", "", "last day")
	hoursCmd.Flags().StringVar(&hoursOpts.format, "format", "json", "output format: json or csv")

	scheduleCmd.Flags().StringVar(&scheduleOpts.phase, "phase", "", "only this phase")

	assignCmd.Flags().StringVar(&assignOpts.phase, "phase", "", "phase to staff")
	assignCmd.Flags().StringVar(&assignOpts.member, "member", "", "book this team member only")
	assignCmd.Flags().IntVar(&assignOpts.hours, "hours", 0, "hours to book (defaults to what the phase estimate still lacks)")
	assignCmd.Flags().BoolVar(&assignOpts.clear, "clear", false, "remove the phase's hour blocks instead")
	_ = assignCmd.MarkFlagRequired("phase")

	reportCmd.Flags().StringVar(&reportOpts.from, "from", "", "first day")
	reportCmd.Flags().StringVar(&reportOpts.to, "to", "", "last day")

	rootCmd.AddCommand(phasesCmd, hoursCmd, scheduleCmd, assignCmd, reportCmd, unscheduledCmd)
}
