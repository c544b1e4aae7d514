package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/reschedule"
)

var rescheduleOpts struct{ yes bool }

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule <project-id> <install-date>",
	Short: "Move a project's install date and rederive its phases",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		install, err := model.ParseDate(args[1])
		if err != nil {
			return err
		}
		confirm := reschedule.AlwaysConfirm
		if !rescheduleOpts.yes {
			confirm = promptConfirm(cmd)
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			p, err := svc.Rescheduler.Reschedule(ctx, args[0], install, confirm)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		})
	},
}

var recalculateCmd = &cobra.Command{
	Use:   "recalculate <project-id>",
	Short: "Rederive a project's phase dates from its install date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			p, err := svc.Rescheduler.Recalculate(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		})
	},
}

func init() {
	rescheduleCmd.Flags().BoolVarP(&rescheduleOpts.yes, "yes", "y", false, "skip the confirmation for large moves")
	rootCmd.AddCommand(rescheduleCmd, recalculateCmd)
}

// promptConfirm asks on the command's input before a large move.
func promptConfirm(cmd *cobra.Command) reschedule.ConfirmFunc {
	return func(p model.Project, newInstall model.Date, shiftDays int) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "Move %q from %s to %s (%+d days)? [y/N] ",
			p.Name, p.InstallDate, newInstall, shiftDays)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
