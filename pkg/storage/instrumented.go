package storage

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/coffeeshop/pkg/drinks"
	"github.com/platinummonkey/coffeeshop/pkg/observability"
)

// InstrumentedRepository records Prometheus and OpenTelemetry metrics around
// every repository call.
type InstrumentedRepository struct {
	next    DrinkRepository
	backend string
	metrics *observability.Metrics
	otel    *observability.OTelMetrics
}

// NewInstrumentedRepository wraps next. Either metrics sink may be nil.
func NewInstrumentedRepository(next DrinkRepository, backend string, metrics *observability.Metrics, otel *observability.OTelMetrics) *InstrumentedRepository {
	return &InstrumentedRepository{
		next:    next,
		backend: backend,
		metrics: metrics,
		otel:    otel,
	}
}

func (r *InstrumentedRepository) observe(ctx context.Context, op string, start time.Time, err error) {
	d := time.Since(start)
	// not-found is an expected outcome and not counted as a storage error
	recorded := err
	if errors.Is(err, ErrNotFound) {
		recorded = nil
	}
	r.metrics.ObserveStorageOperation(op, r.backend, d, recorded, errorType(err))
	r.otel.RecordStorageOperation(ctx, op, r.backend, d, recorded)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "internal"
	}
}

func (r *InstrumentedRepository) ListAll(ctx context.Context) ([]drinks.Drink, error) {
	start := time.Now()
	result, err := r.next.ListAll(ctx)
	r.observe(ctx, "list", start, err)
	return result, err
}

func (r *InstrumentedRepository) FindByID(ctx context.Context, id int64) (*drinks.Drink, error) {
	start := time.Now()
	d, err := r.next.FindByID(ctx, id)
	r.observe(ctx, "find_by_id", start, err)
	return d, err
}

func (r *InstrumentedRepository) FindByTitle(ctx context.Context, title string) (*drinks.Drink, error) {
	start := time.Now()
	d, err := r.next.FindByTitle(ctx, title)
	r.observe(ctx, "find_by_title", start, err)
	return d, err
}

func (r *InstrumentedRepository) Insert(ctx context.Context, drink *drinks.Drink) error {
	start := time.Now()
	err := r.next.Insert(ctx, drink)
	r.observe(ctx, "insert", start, err)
	return err
}

func (r *InstrumentedRepository) Update(ctx context.Context, drink *drinks.Drink) error {
	start := time.Now()
	err := r.next.Update(ctx, drink)
	r.observe(ctx, "update", start, err)
	return err
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe(ctx, "delete", start, err)
	return err
}

func (r *InstrumentedRepository) Migrate(ctx context.Context) error {
	start := time.Now()
	err := r.next.Migrate(ctx)
	r.observe(ctx, "migrate", start, err)
	return err
}

func (r *InstrumentedRepository) Reset(ctx context.Context) error {
	start := time.Now()
	err := r.next.Reset(ctx)
	r.observe(ctx, "reset", start, err)
	return err
}

var _ DrinkRepository = (*InstrumentedRepository)(nil)
