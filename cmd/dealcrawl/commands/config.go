package commands

import (
	"dealcrawl-backend/lib/configutil"
	configlibsql "dealcrawl-backend/lib/configutil/libsql"
	"dealcrawl-backend/lib/render"
	"dealcrawl-backend/lib/restyutil"
	"dealcrawl-backend/services/harvester"
	"fmt"
	"log/slog"
	"time"
)

const (
	RendererChrome = "chrome"
	RendererHttp   = "http"
)

type RendererConfig struct {
	Kind           string `json:"kind"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	PollIntervalMs int    `json:"poll_interval_ms"`
	ChromePath     string `json:"chrome_path"`
	UserAgent      string `json:"user_agent"`
	// DumpDir receives every page fetched by the http renderer
	DumpDir string `json:"dump_dir"`
}

type KauflandConfig struct {
	Url string `json:"url"`
}

type Config struct {
	Database configlibsql.Struct `json:"database"`
	LogDir   string              `json:"log_dir"`
	Verbose  bool                `json:"verbose"`
	Renderer RendererConfig      `json:"renderer"`
	Schedule string              `json:"schedule"`
	Kaufland KauflandConfig      `json:"kaufland"`
}

var defaultConfig = Config{
	Database: configlibsql.Struct{
		File: "<dev_state>/main.sqlite",
	},
	LogDir: "logs",
	Renderer: RendererConfig{
		Kind:           RendererChrome,
		TimeoutSeconds: int(harvester.DefaultTimeout / time.Second),
	},
	Schedule: "0 6 * * *",
}

func readConfig() (Config, error) {
	return configutil.ReadConfigOr("config.json5", defaultConfig)
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.Renderer.TimeoutSeconds) * time.Second
}

func (c Config) renderer(logger *slog.Logger) (render.Renderer, error) {
	switch c.Renderer.Kind {
	case RendererChrome:
		return render.ChromeRenderer{
			ExecPath:  c.Renderer.ChromePath,
			UserAgent: c.Renderer.UserAgent,
		}, nil
	case RendererHttp:
		opts := render.HTTPRendererOptions{
			PollInterval: time.Duration(c.Renderer.PollIntervalMs) * time.Millisecond,
			UserAgent:    c.Renderer.UserAgent,
			Logger:       logger,
		}
		if c.Renderer.DumpDir != "" {
			output, err := restyutil.NewFilesystemOutput(c.Renderer.DumpDir)
			if err != nil {
				return nil, err
			}
			opts.Dump = output
		}
		return render.NewHTTPRenderer(opts), nil
	default:
		return nil, fmt.Errorf("unknown renderer kind '%s'", c.Renderer.Kind)
	}
}

func (c Config) targets() []harvester.Target {
	return []harvester.Target{
		harvester.KauflandTarget(c.Kaufland.Url, c.timeout()),
	}
}
