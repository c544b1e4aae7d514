package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Manage daily phase capacity",
}

var capacityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print default capacity per phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			caps, err := svc.Store.PhaseCapacities(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, caps)
		})
	},
}

var capacitySetCmd = &cobra.Command{
	Use:   "set <phase> <hours>",
	Short: "Set the default daily capacity of a phase",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, hours, err := phaseAndHours(args[0], args[1])
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Store.SetPhaseCapacity(ctx, model.DailyPhaseCapacity{Phase: kind, MaxHours: hours})
		})
	},
}

var overrideReason string

var capacityOverrideCmd = &cobra.Command{
	Use:   "override <date> <phase> <hours>",
	Short: "Replace a phase's capacity on one date",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}
		kind, hours, err := phaseAndHours(args[1], args[2])
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Capacity.SetOverride(ctx, model.CapacityOverride{
				Date:             d,
				Phase:            kind,
				AdjustedCapacity: hours,
				Reason:           overrideReason,
			})
		})
	},
}

var capacityResetCmd = &cobra.Command{
	Use:   "reset <date> <phase>",
	Short: "Drop a capacity override",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}
		kind, err := model.ParsePhaseKind(args[1])
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Capacity.ResetOverride(ctx, d, kind)
		})
	},
}

var memberOpts struct {
	name, phases string
	priority     int
	inactive     bool
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage bookable team members",
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List team members by priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			list, err := svc.Store.ListMembers(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		})
	},
}

var teamSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Create or update a team member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := model.TeamMember{
			ID:       args[0],
			Name:     memberOpts.name,
			Priority: memberOpts.priority,
			Active:   !memberOpts.inactive,
		}
		for _, s := range strings.Split(memberOpts.phases, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			k, err := model.ParsePhaseKind(s)
			if err != nil {
				return err
			}
			m.Phases = append(m.Phases, k)
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Store.UpsertMember(ctx, m)
		})
	},
}

func init() {
	capacityOverrideCmd.Flags().StringVar(&overrideReason, "reason", "", "why capacity changes that day")
	capacityCmd.AddCommand(capacityShowCmd, capacitySetCmd, capacityOverrideCmd, capacityResetCmd)

	teamSetCmd.Flags().StringVar(&memberOpts.name, "name", "", "display name")
	teamSetCmd.Flags().StringVar(&memberOpts.phases, "phases", "", "comma separated phases the member works")
	teamSetCmd.Flags().IntVar(&memberOpts.priority, "priority", 0, "booking order, lowest first")
	teamSetCmd.Flags().BoolVar(&memberOpts.inactive, "inactive", false, "exclude from auto-fill")
	teamCmd.AddCommand(teamListCmd, teamSetCmd)

	rootCmd.AddCommand(capacityCmd, teamCmd)
}

func phaseAndHours(phase, hours string) (model.PhaseKind, int, error) {
	kind, err := model.ParsePhaseKind(phase)
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(hours)
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("invalid hours %q", hours)
	}
	return kind, n, nil
}
