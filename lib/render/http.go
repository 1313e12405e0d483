package render

import (
	"bytes"
	"context"
	"dealcrawl-backend/lib/restyutil"
	"dealcrawl-backend/lib/telemetry"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultPollInterval = time.Second

// HTTPRenderer fetches server rendered pages, polling until the page
// contains the awaited element.
type HTTPRenderer struct {
	client       *resty.Client
	pollInterval time.Duration
	logger       *slog.Logger
}

type HTTPRendererOptions struct {
	// defaults to 1 second
	PollInterval time.Duration
	UserAgent    string
	Logger       *slog.Logger
	// Dump receives every fetched page with its request when set
	Dump restyutil.Output
}

func NewHTTPRenderer(opts HTTPRendererOptions) HTTPRenderer {
	client := resty.New()
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetHeader("Accept-Language", "de-DE,de;q=0.9")
	telemetry.InstrumentResty(client, "dealcrawl.lib.render.http")
	if opts.Dump != nil {
		restyutil.DumpExchanges(client, opts.Dump)
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return HTTPRenderer{
		client:       client,
		pollInterval: interval,
		logger:       logger,
	}
}

func (r HTTPRenderer) fetch(ctx context.Context, url, waitFor string) (string, bool, error) {
	res, err := r.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", false, err
	}
	if res.IsError() {
		return "", false, fmt.Errorf("unexpected status %d", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return "", false, err
	}
	return res.String(), doc.Find(waitFor).Length() > 0, nil
}

func (r HTTPRenderer) Render(ctx context.Context, url, waitFor string, timeout time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "HTTPRenderer.Render")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", url),
		attribute.String("wait_for", waitFor),
	)

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	attempt := 0
	for {
		attempt++
		page, ready, err := r.fetch(timeoutCtx, url, waitFor)
		if err == nil && ready {
			span.SetAttributes(attribute.Int("attempts", attempt))
			return page, nil
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch")
			return "", fmt.Errorf("render '%s': %w", url, err)
		}
		r.logger.DebugContext(ctx, "page not ready", "url", url, "wait_for", waitFor, "attempt", attempt)

		select {
		case <-timeoutCtx.Done():
			err := &RenderTimeoutError{
				Url:     url,
				WaitFor: waitFor,
				Timeout: timeout,
				Err:     timeoutCtx.Err(),
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "timed out")
			return "", err
		case <-ticker.C:
		}
	}
}
