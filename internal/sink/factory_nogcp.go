//go:build !gcp

package sink

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/atupatu/pccoe/internal/config"
)

func newGCSSink(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	return nil, errors.New("gcs sink not available: rebuild with -tags gcp")
}
