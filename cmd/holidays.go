package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Inspect and edit the holiday list",
}

var holidaysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print cached holidays and the cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			st := svc.Holidays.Status()
			if !st.Loaded {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: holidays not loaded: %s\n", st.ErrText())
			}
			return printJSON(cmd, svc.Holidays.Holidays())
		})
	},
}

var holidayName string

var holidaysAddCmd = &cobra.Command{
	Use:   "add <date>",
	Short: "Add a holiday to the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			if err := svc.Store.AddHoliday(ctx, model.Holiday{Date: d, Name: holidayName}); err != nil {
				return err
			}
			return reportReload(ctx, cmd, svc)
		})
	},
}

var holidaysDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Remove a holiday from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			if err := svc.Store.DeleteHoliday(ctx, d); err != nil {
				return err
			}
			return reportReload(ctx, cmd, svc)
		})
	},
}

var holidaysReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Refetch holidays and print the cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			return reportReload(ctx, cmd, svc)
		})
	},
}

func init() {
	holidaysAddCmd.Flags().StringVar(&holidayName, "name", "", "holiday name")
	holidaysCmd.AddCommand(holidaysListCmd, holidaysAddCmd, holidaysDeleteCmd, holidaysReloadCmd)
	rootCmd.AddCommand(holidaysCmd)
}

func reportReload(ctx context.Context, cmd *cobra.Command, svc *app.Service) error {
	st := svc.Holidays.ForceReload(ctx)
	if !st.Loaded {
		return fmt.Errorf("reload holidays: %s", st.ErrText())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d holidays loaded\n", st.Count)
	return nil
}
