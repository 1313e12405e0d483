package harvester

import (
	"context"
	"dealcrawl-backend/lib/chrono"
	"dealcrawl-backend/lib/dealstore"
	"dealcrawl-backend/lib/deals"
	"dealcrawl-backend/lib/render"
	"dealcrawl-backend/lib/scrapers/kaufland"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("dealcrawl.services.harvester")
var meter = otel.Meter("dealcrawl.services.harvester")

var productsCounter, _ = meter.Int64Counter("harvester.products")
var pricesCounter, _ = meter.Int64Counter("harvester.prices")
var expiredCounter, _ = meter.Int64Counter("harvester.expired_prices")
var orphanedCounter, _ = meter.Int64Counter("harvester.orphaned_products")
var failureCounter, _ = meter.Int64Counter("harvester.failures")

// ParseFunc turns a rendered page into a listing, `now` is the capture time.
type ParseFunc func(ctx context.Context, page string, now time.Time) (kaufland.Listing, error)

// Target is one page to harvest and the store its prices belong to.
type Target struct {
	Store   deals.Store
	Url     string
	WaitFor string
	Timeout time.Duration
	Parse   ParseFunc
}

func (t Target) Name() string {
	return t.Store.Name
}

const DefaultTimeout = 30 * time.Second

// KauflandTarget harvests the weekly offer page at `url`, the public
// offer page is used when `url` is empty.
func KauflandTarget(url string, timeout time.Duration) Target {
	if url == "" {
		url = kaufland.OfferUrl
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Target{
		Store:   kaufland.Store,
		Url:     url,
		WaitFor: kaufland.ReadySelector,
		Timeout: timeout,
		Parse:   kaufland.ParseListing,
	}
}

// Storage is the subset of dealstore.Store a harvest writes through.
// A product is saved together with its prices so that a concurrent sweep
// cannot collect it in between.
type Storage interface {
	Init(ctx context.Context) error
	UpsertStore(ctx context.Context, store deals.Store) (int64, error)
	SaveProduct(ctx context.Context, product deals.Product, prices []deals.PriceObservation) error
	ExpireAndCollect(ctx context.Context) (dealstore.SweepResult, error)
}

type Service struct {
	store    Storage
	renderer render.Renderer
	logger   *slog.Logger
	clock    chrono.Clock
}

func NewService(store Storage, renderer render.Renderer, logger *slog.Logger, clock chrono.Clock) Service {
	return Service{
		store:    store,
		renderer: renderer,
		logger:   logger.With("component", "harvester"),
		clock:    clock,
	}
}

// StepError is a failed step of a target's harvest.
type StepError struct {
	Target string
	Step   string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Target, e.Step, e.Err.Error())
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Summary counts what one target's harvest did.
type Summary struct {
	Products         int
	Prices           int
	Degraded         int
	ExpiredPrices    int
	OrphanedProducts int
}

func (s Summary) add(other Summary) Summary {
	return Summary{
		Products:         s.Products + other.Products,
		Prices:           s.Prices + other.Prices,
		Degraded:         s.Degraded + other.Degraded,
		ExpiredPrices:    s.ExpiredPrices + other.ExpiredPrices,
		OrphanedProducts: s.OrphanedProducts + other.OrphanedProducts,
	}
}

// Run harvests every target in order. A failing target does not stop the
// ones after it, all failures are joined into the returned error.
func (s Service) Run(ctx context.Context, targets []Target) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	start := s.clock.Now()
	err := s.store.Init(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to init store")
		return err
	}

	var total Summary
	var errs []error
	for _, target := range targets {
		summary, err := s.harvest(ctx, target)
		total = total.add(summary)
		if err != nil {
			failureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("target", target.Name())))
			errs = append(errs, err)
		}
	}

	s.logger.InfoContext(
		ctx, "run finished",
		"targets", len(targets),
		"failed", len(errs),
		"products", total.Products,
		"prices", total.Prices,
		"degraded_fields", total.Degraded,
		"expired_prices", total.ExpiredPrices,
		"orphaned_products", total.OrphanedProducts,
		"seconds", s.clock.Now().Sub(start).Seconds(),
	)

	err = errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "some targets failed")
	}
	return err
}

// fail logs the failed step and records it on the span in ctx.
func (s Service) fail(ctx context.Context, target Target, step string, err error) error {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprintf("%s failed", step))

	s.logger.ErrorContext(
		ctx, "harvest step failed",
		"target", target.Name(),
		"step", step,
		"err", err,
	)
	return &StepError{Target: target.Name(), Step: step, Err: err}
}

func (s Service) harvest(ctx context.Context, target Target) (Summary, error) {
	ctx, span := tracer.Start(ctx, "harvest")
	defer span.End()
	span.SetAttributes(
		attribute.String("target", target.Name()),
		attribute.String("url", target.Url),
	)
	attrs := metric.WithAttributes(attribute.String("target", target.Name()))

	s.logger.InfoContext(ctx, "rendering page", "target", target.Name(), "url", target.Url)
	page, err := s.renderer.Render(ctx, target.Url, target.WaitFor, target.Timeout)
	if err != nil {
		return Summary{}, s.fail(ctx, target, "render", err)
	}

	listing, err := target.Parse(ctx, page, s.clock.Now())
	if err != nil {
		return Summary{}, s.fail(ctx, target, "parse", err)
	}
	if listing.Degraded > 0 {
		s.logger.WarnContext(ctx, "some fields were missing", "target", target.Name(), "count", listing.Degraded)
	}

	summary := Summary{Degraded: listing.Degraded}
	persistErr := s.persist(ctx, target, listing, &summary)
	productsCounter.Add(ctx, int64(summary.Products), attrs)
	pricesCounter.Add(ctx, int64(summary.Prices), attrs)

	sweep, err := s.store.ExpireAndCollect(ctx)
	if err != nil {
		err = s.fail(ctx, target, "sweep", err)
		if persistErr != nil {
			span.SetStatus(codes.Error, fmt.Sprintf("%s and sweep failed", stepOf(persistErr)))
		}
	} else {
		summary.ExpiredPrices = sweep.ExpiredPrices
		summary.OrphanedProducts = sweep.OrphanedProducts
		expiredCounter.Add(ctx, int64(sweep.ExpiredPrices), attrs)
		orphanedCounter.Add(ctx, int64(sweep.OrphanedProducts), attrs)
	}

	err = errors.Join(persistErr, err)
	if err != nil {
		return summary, err
	}

	s.logger.InfoContext(
		ctx, "harvested target",
		"target", target.Name(),
		"products", summary.Products,
		"prices", summary.Prices,
	)
	return summary, nil
}

func stepOf(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return "unknown step"
}

// persist writes the listing product by product in document order,
// stopping at the first failed write.
func (s Service) persist(ctx context.Context, target Target, listing kaufland.Listing, summary *Summary) error {
	storeId, err := s.store.UpsertStore(ctx, target.Store)
	if err != nil {
		return s.fail(ctx, target, "upsert store", err)
	}

	pricesOf := make(map[string][]deals.PriceObservation, len(listing.Products))
	for _, price := range listing.Prices {
		price.StoreID = storeId
		pricesOf[price.ProductID] = append(pricesOf[price.ProductID], price)
	}

	for _, product := range listing.Products {
		prices := pricesOf[product.ID]
		// the same product can be listed in more than one tile
		delete(pricesOf, product.ID)

		err := s.store.SaveProduct(ctx, product, prices)
		if err != nil {
			return s.fail(ctx, target, "save product", err)
		}
		summary.Products++
		summary.Prices += len(prices)
	}
	return nil
}
