package chrono

import (
	"context"
	"dealcrawl-backend/lib/timezone"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CronAPI is the interface that anything depending on things to happen on a cron job should use.
type CronAPI interface {
	Cron(spec string, callback func()) error
}

// StandardCron is the standard implementation of CronAPI using `github.com/robfig/cron/v3`
type StandardCron struct {
	cron *cron.Cron
}

// NewStandardCron is the constructor of StandardCron. An invocation that
// fires while the previous one is still running is skipped.
func NewStandardCron(logger *slog.Logger) StandardCron {
	l := cronLogger{logger: logger}
	cronner := cron.New(
		cron.WithLogger(l),
		cron.WithLocation(timezone.Location),
		cron.WithChain(cron.SkipIfStillRunning(l)),
	)
	cronner.Start()

	return StandardCron{
		cron: cronner,
	}
}

func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	return err
}

// Stop stops scheduling new jobs and waits for running ones until ctx is done.
func (s StandardCron) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i < len(keysAndValues)/2; i++ {
		idx := i * 2
		key := keysAndValues[idx]
		value := keysAndValues[idx+1]
		params = append(params, fmt.Sprint(key), value)
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(fmt.Sprintf("cron: %s", msg), l.formatParams(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(
		fmt.Sprintf("cron: %s", msg),
		append([]any{"err", err}, l.formatParams(keysAndValues)...)...,
	)
}
