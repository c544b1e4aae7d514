package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create and list projects",
}

var projectAddOpts struct {
	id, name, install string
	hours             model.PhaseHours
}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a project and derive its phase dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		install, err := parseDateFlag("install", projectAddOpts.install)
		if err != nil {
			return err
		}
		p := model.Project{
			ID:          projectAddOpts.id,
			Name:        projectAddOpts.name,
			Hours:       projectAddOpts.hours,
			InstallDate: install,
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			saved, err := createProject(ctx, svc, p)
			if err != nil {
				return err
			}
			return printJSON(cmd, saved)
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects by install date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			return printJSON(cmd, svc.Rescheduler.Cache().List())
		})
	},
}

func init() {
	f := projectAddCmd.Flags()
	f.StringVar(&projectAddOpts.id, "id", "", "project id (generated when empty)")
	f.StringVar(&projectAddOpts.name, "name", "", "project name")
	f.StringVar(&projectAddOpts.install, "install", "", "install date YYYY-MM-DD")
	f.IntVar(&projectAddOpts.hours.Millwork, "millwork-hours", 0, "estimated millwork hours")
	f.IntVar(&projectAddOpts.hours.BoxConstruction, "box-hours", 0, "estimated box construction hours")
	f.IntVar(&projectAddOpts.hours.Stain, "stain-hours", 0, "estimated stain hours")
	f.IntVar(&projectAddOpts.hours.Install, "install-hours", 0, "estimated install hours")
	_ = projectAddCmd.MarkFlagRequired("name")
	_ = projectAddCmd.MarkFlagRequired("install")

	projectCmd.AddCommand(projectAddCmd, projectListCmd)
	rootCmd.AddCommand(projectCmd)
}

func createProject(ctx context.Context, svc *app.Service, p model.Project) (model.Project, error) {
	derived, err := svc.Scheduler.CalculatePhaseDates(p)
	if err != nil {
		return model.Project{}, fmt.Errorf("derive dates: %w", err)
	}
	saved, err := svc.Store.CreateProject(ctx, derived)
	if err != nil {
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}
	svc.Rescheduler.Cache().Apply(saved)
	return saved, nil
}
