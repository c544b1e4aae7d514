package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/canada7700/finish-line-calendar-app-sub000/app"
	"github.com/canada7700/finish-line-calendar-app-sub000/config"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/infra/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/pkg/export"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "finishline",
	Short:        "Cabinet shop production scheduler",
	RunE:         serve,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background jobs",
	RunE:  serve,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)
	return svc.Run(ctx)
}

func newService(ctx context.Context) (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(ctx, cfg)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

// withService runs fn against a freshly wired service for one-shot
// commands.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)
	return fn(ctx, svc)
}

func printJSON(cmd *cobra.Command, v any) error {
	return export.WriteJSON(cmd.OutOrStdout(), v)
}

func parseDateFlag(name, value string) (model.Date, error) {
	if value == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func parsePhaseFlag(value string) (model.PhaseKind, error) {
	k, err := model.ParsePhaseKind(value)
	if err != nil {
		return 0, fmt.Errorf("--phase: %w", err)
	}
	return k, nil
}
