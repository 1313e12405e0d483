package render

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("dealcrawl.lib.render")

// Renderer produces the final html of a page once the element matching
// `waitFor` is present, waiting at most `timeout` for it.
//
// note: fault injection point
type Renderer interface {
	Render(ctx context.Context, url, waitFor string, timeout time.Duration) (string, error)
}

// RenderTimeoutError is returned when the page never became ready.
type RenderTimeoutError struct {
	Url     string
	WaitFor string
	Timeout time.Duration
	Err     error
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf(
		"render '%s': '%s' did not appear within %s",
		e.Url, e.WaitFor, e.Timeout,
	)
}

func (e *RenderTimeoutError) Unwrap() error {
	return e.Err
}
