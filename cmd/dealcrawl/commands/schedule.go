package commands

import (
	"context"
	"dealcrawl-backend/lib/chrono"
	"dealcrawl-backend/lib/telemetry"
	"dealcrawl-backend/lib/util/serviceutil"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Harvests on the cron schedule from config.json5 until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		env := setup(ctx)
		defer env.close()

		telemetry.InstrumentPerfStats(ctx, env.logger)

		cronner := chrono.NewStandardCron(env.logger.With("component", "cron"))
		err := cronner.Cron(env.config.Schedule, func() {
			err := env.service.Run(ctx, env.config.targets())
			if err != nil {
				env.logger.ErrorContext(ctx, "scheduled harvest failed", "err", err)
			}
		})
		if err != nil {
			env.close()
			serviceutil.Fatal("invalid schedule", err)
		}
		env.logger.Info("waiting for schedule", "schedule", env.config.Schedule)

		<-ctx.Done()
		env.logger.Info("shutting down")

		stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		cronner.Stop(stopCtx)
	},
}
