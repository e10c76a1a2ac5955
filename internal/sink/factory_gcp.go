//go:build gcp

package sink

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/atupatu/pccoe/internal/config"
)

func newGCSSink(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("sink.bucket is required for gcs storage")
	}
	s, err := NewGCSSink(ctx, cfg.Bucket, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	return s, nil
}
