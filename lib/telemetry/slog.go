package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type SlogOptions struct {
	// LogDir receives a log_YYYYMMDD.log file per day, empty disables
	// file output.
	LogDir  string
	Verbose bool
	// Console defaults to os.Stdout
	Console io.Writer
	Now     func() time.Time
}

// LogFileName is the name of the log file written on the day `t` falls on.
func LogFileName(t time.Time) string {
	return fmt.Sprintf("log_%s.log", t.Format("20060102"))
}

// InitSlog creates a logger writing to the console and the dated log file
// and makes it the slog default. The returned function closes the file.
func InitSlog(opts SlogOptions) (*slog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	out := console
	closeFile := func() error { return nil }
	if opts.LogDir != "" {
		err := os.MkdirAll(opts.LogDir, 0777)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(
			filepath.Join(opts.LogDir, LogFileName(now())),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY,
			0666,
		)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(console, f)
		closeFile = f.Close
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return logger, closeFile, nil
}
