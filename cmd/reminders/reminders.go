package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/nutriplan_backend/config"
	"github.com/Alijeyrad/nutriplan_backend/internal/app"
	"github.com/Alijeyrad/nutriplan_backend/internal/service/reminder"
	"github.com/Alijeyrad/nutriplan_backend/pkg/logs"
)

func NewRemindersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Appointment reminder commands",
	}

	cmd.AddCommand(NewSendCommand())

	return cmd
}

// NewSendCommand runs one reminder sweep, meant to be called from cron.
func NewSendCommand() *cobra.Command {
	var (
		date    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Email reminders for tomorrow's scheduled appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return err
			}
			slog.SetDefault(logs.New(cfg))

			var svc reminder.Service
			fxApp := fx.New(
				fx.Supply(cfg),
				app.InfraModule,
				app.ServiceModule,
				fx.Populate(&svc),
				fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := fxApp.Start(ctx); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				stopCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
				defer stop()
				_ = fxApp.Stop(stopCtx)
			}()

			var summary *reminder.Summary
			if date != "" {
				summary, err = svc.SendFor(ctx, date)
			} else {
				summary, err = svc.SendDaily(ctx)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d reminder(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target date (YYYY-MM-DD); defaults to tomorrow in the scheduling time zone")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Maximum duration of the sweep")

	return cmd
}
