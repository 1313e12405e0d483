package commands

import (
	"context"
	"database/sql"
	"dealcrawl-backend/lib/chrono"
	"dealcrawl-backend/lib/dealstore"
	"dealcrawl-backend/lib/render"
	"dealcrawl-backend/lib/telemetry"
	"dealcrawl-backend/lib/util/serviceutil"
	"dealcrawl-backend/services/harvester"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dealcrawl",
	Short: "dealcrawl harvests the weekly offers of a store into a database.",
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd.Context())
		defer env.close()

		err := env.service.Run(cmd.Context(), env.config.targets())
		if err != nil {
			env.close()
			serviceutil.Fatal("harvest failed", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// environment is everything a command needs to run the harvester.
type environment struct {
	config  Config
	logger  *slog.Logger
	service harvester.Service
	closers []func() error
}

func (e *environment) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		err := e.closers[i]()
		if err != nil {
			slog.Warn("failed to clean up", "err", err)
		}
	}
	e.closers = nil
}

func setup(ctx context.Context) *environment {
	cfg, err := readConfig()
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	logger, closeLog, err := telemetry.InitSlog(telemetry.SlogOptions{
		LogDir:  cfg.LogDir,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		serviceutil.Fatal("failed to setup logging", err)
	}
	env := &environment{
		config:  cfg,
		logger:  logger,
		closers: []func() error{closeLog},
	}

	tel, err := telemetry.SetupFromEnv(ctx, "dealcrawl")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	env.closers = append(env.closers, func() error {
		return tel.Shutdown(context.Background())
	})

	database, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	env.closers = append(env.closers, database.Close)

	renderer, err := cfg.renderer(logger)
	if err != nil {
		serviceutil.Fatal("failed to create renderer", err)
	}

	env.service = newService(database, renderer, logger)
	return env
}

func newService(database *sql.DB, renderer render.Renderer, logger *slog.Logger) harvester.Service {
	clock := chrono.StandardClock{}
	store := dealstore.NewStore(database, logger.With("component", "dealstore"), clock)
	return harvester.NewService(store, renderer, logger, clock)
}
