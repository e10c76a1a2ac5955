package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const sqliteSelectEvents = `
	SELECT id, tab, filename, "timestamp", entities, selected_entities, created_at
	FROM usage_events`

// RecordUsage appends an event and returns its generated id.
func (s *SQLiteStorage) RecordUsage(ctx context.Context, event UsageEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return "", ErrClosed
	}

	detected, err := labelsToJSON(event.DetectedEntities)
	if err != nil {
		return "", err
	}
	selected, err := labelsToJSON(event.SelectedEntities)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO usage_events (id, tab, filename, "timestamp", entities, selected_entities, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		event.Tab,
		event.Filename,
		event.Timestamp,
		detected,
		selected,
		event.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", errors.Wrap(err, "failed to record usage")
	}

	return id, nil
}

// GetUsageHistory returns the events matching filter in insertion order.
func (s *SQLiteStorage) GetUsageHistory(ctx context.Context, filter Filter) ([]UsageEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	where, args := filter.where(questionMark)
	rows, err := s.db.QueryContext(ctx, sqliteSelectEvents+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query usage history")
	}
	defer rows.Close()

	events := []UsageEvent{}
	for rows.Next() {
		var event UsageEvent
		var detected, selected, createdAt string

		if err := rows.Scan(
			&event.ID,
			&event.Tab,
			&event.Filename,
			&event.Timestamp,
			&detected,
			&selected,
			&createdAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan usage row")
		}

		if event.DetectedEntities, err = jsonToLabels(detected); err != nil {
			return nil, errors.Wrapf(err, "event %s: entities", event.ID)
		}
		if event.SelectedEntities, err = jsonToLabels(selected); err != nil {
			return nil, errors.Wrapf(err, "event %s: selected_entities", event.ID)
		}
		if event.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, errors.Wrapf(err, "event %s: created_at", event.ID)
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read usage history")
	}

	return events, nil
}

// labelsToJSON encodes an entity list for a text or JSONB column.
func labelsToJSON(labels []string) (string, error) {
	if labels == nil {
		labels = []string{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal entity labels")
	}
	return string(data), nil
}

// jsonToLabels decodes a stored entity list, never returning nil.
func jsonToLabels(data string) ([]string, error) {
	labels := []string{}
	if data == "" {
		return labels, nil
	}
	if err := json.Unmarshal([]byte(data), &labels); err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}
