package usage

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/atupatu/pccoe/internal/storage"
)

// Querier reads event history for callers outside the process.
type Querier struct {
	store storage.Storage
}

// NewQuerier creates a Querier over store.
func NewQuerier(store storage.Storage) *Querier {
	return &Querier{store: store}
}

// Logs returns the events matching filter in store order. CreatedAt is
// internal and is cleared on every returned event.
func (q *Querier) Logs(ctx context.Context, filter storage.Filter) ([]storage.UsageEvent, error) {
	ctx, span := tracer.Start(ctx, "usage.Logs")
	defer span.End()
	span.SetAttributes(
		attribute.String("filter.tab", filter.Tab),
		attribute.String("filter.filename", filter.Filename),
		attribute.String("filter.start_date", filter.StartDate),
		attribute.String("filter.end_date", filter.EndDate),
	)

	events, err := q.store.GetUsageHistory(ctx, filter)
	if err != nil {
		return nil, fail(span, storeError(err, "get usage history"))
	}

	result := make([]storage.UsageEvent, 0, len(events))
	for _, e := range events {
		e.CreatedAt = time.Time{}
		result = append(result, e)
	}
	span.SetAttributes(attribute.Int("usage.count", len(result)))
	return result, nil
}
