package harvester

import (
	"context"
	"dealcrawl-backend/lib/chrono"
	"dealcrawl-backend/lib/dealstore"
	"dealcrawl-backend/lib/testutil"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// brokenSweep fails every sweep and writes everything else through.
type brokenSweep struct {
	dealstore.Store
}

func (brokenSweep) ExpireAndCollect(ctx context.Context) (dealstore.SweepResult, error) {
	return dealstore.SweepResult{}, &dealstore.StorageError{Op: "expire and collect", Err: errors.New("database is locked")}
}

func TestHarvestSpanNamesFailedStep(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	renderer := &fakeRenderer{pages: map[string]string{"https://offers.example": offerPage}}
	_, store, _ := setup(t, renderer)
	svc := NewService(brokenSweep{Store: store}, renderer, testutil.Logger(t), chrono.FixedClock(now))

	err := svc.Run(context.Background(), []Target{target("Kaufland", "https://offers.example")})
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "sweep", stepErr.Step)

	// the listing itself was written
	requireCounts(t, store, 2, 3)

	var harvestSpans []sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "harvest" {
			harvestSpans = append(harvestSpans, span)
		}
	}
	require.Len(t, harvestSpans, 1)
	require.Equal(t, codes.Error, harvestSpans[0].Status().Code)
	require.Equal(t, "sweep failed", harvestSpans[0].Status().Description)
}
