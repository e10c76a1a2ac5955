// Package usage implements the ingestion and query services over the event
// store.
package usage

import "github.com/cockroachdb/errors"

// Error kinds. Errors returned by this package are marked with one of these,
// so callers classify with errors.Is while Error() keeps the original text.
var (
	// ErrValidation means a required part of the report was missing.
	ErrValidation = errors.New("validation error")

	// ErrParse means a structured field could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrStore means the event store rejected or failed the operation.
	ErrStore = errors.New("store error")

	// ErrSink means the raw upload could not be persisted.
	ErrSink = errors.New("sink error")
)

// ErrNoFile is returned when a report carries no file.
var ErrNoFile = errors.Mark(errors.New("No file provided"), ErrValidation)

func parseError(err error, field string) error {
	return errors.Mark(errors.Wrapf(err, "invalid %s", field), ErrParse)
}

func storeError(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), ErrStore)
}

func sinkError(err error) error {
	return errors.Mark(err, ErrSink)
}
