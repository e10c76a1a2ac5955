// Package learning infers which entity labels a user habitually keeps,
// from the selections recorded in their usage history.
package learning

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/atupatu/pccoe/internal/storage"
	"github.com/atupatu/pccoe/internal/telemetry"
)

const (
	// majorityRatio is the share of events a label must be selected in to
	// count as preferred.
	majorityRatio = 0.5

	// fallbackSize is how many of the most-selected labels are returned when
	// no label reaches the majority.
	fallbackSize = 3
)

var tracer = telemetry.Tracer("github.com/atupatu/pccoe/internal/learning")

// EntityCount is the number of events that selected a label.
type EntityCount struct {
	Entity string
	Count  int
}

// CountSelections tallies SelectedEntities across events, in the order each
// label was first seen. Detected-but-unselected labels are not counted.
func CountSelections(events []storage.UsageEvent) []EntityCount {
	index := make(map[string]int)
	counts := []EntityCount{}

	for _, event := range events {
		for _, label := range event.SelectedEntities {
			i, ok := index[label]
			if !ok {
				i = len(counts)
				index[label] = i
				counts = append(counts, EntityCount{Entity: label})
			}
			counts[i].Count++
		}
	}

	return counts
}

// Preferences returns the labels selected in at least half of events, in
// first-seen order. If none reach that share, it returns up to three of the
// most-selected labels, ties going to the label seen first.
func Preferences(events []storage.UsageEvent) []string {
	preferred := []string{}
	if len(events) == 0 {
		return preferred
	}

	counts := CountSelections(events)
	threshold := float64(len(events)) * majorityRatio

	for _, c := range counts {
		if float64(c.Count) >= threshold {
			preferred = append(preferred, c.Entity)
		}
	}
	if len(preferred) > 0 || len(counts) == 0 {
		return preferred
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > fallbackSize {
		counts = counts[:fallbackSize]
	}
	for _, c := range counts {
		preferred = append(preferred, c.Entity)
	}
	return preferred
}

// EventSource supplies a tab's history.
type EventSource interface {
	Logs(ctx context.Context, filter storage.Filter) ([]storage.UsageEvent, error)
}

// Engine computes preferences on demand. Nothing is cached or persisted.
type Engine struct {
	source EventSource
}

// NewEngine creates an Engine reading from source.
func NewEngine(source EventSource) *Engine {
	return &Engine{source: source}
}

// PreferredEntities returns the preference set for tab. A tab with no
// history yields an empty set, not an error.
func (e *Engine) PreferredEntities(ctx context.Context, tab string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "learning.PreferredEntities")
	defer span.End()
	span.SetAttributes(attribute.String("usage.tab", tab))

	events, err := e.source.Logs(ctx, storage.Filter{Tab: tab})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	preferred := Preferences(events)
	span.SetAttributes(
		attribute.Int("usage.events", len(events)),
		attribute.StringSlice("usage.preferred", preferred),
	)
	return preferred, nil
}
