package render

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ChromeRenderer renders pages in a headless chrome instance, this is
// required for pages that build their content with javascript.
type ChromeRenderer struct {
	// ExecPath overrides the chrome binary, empty means chromedp's lookup.
	ExecPath  string
	UserAgent string
}

func (r ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	if r.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.UserAgent))
	}
	return opts
}

func (r ChromeRenderer) Render(ctx context.Context, url, waitFor string, timeout time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "ChromeRenderer.Render")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", url),
		attribute.String("wait_for", waitFor),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var page string
	err := chromedp.Run(
		timeoutCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitFor, chromedp.ByQuery),
		chromedp.OuterHTML("html", &page, chromedp.ByQuery),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		err = &RenderTimeoutError{
			Url:     url,
			WaitFor: waitFor,
			Timeout: timeout,
			Err:     err,
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render")
		return "", err
	}

	span.SetAttributes(attribute.Int("size", len(page)))
	return page, nil
}
