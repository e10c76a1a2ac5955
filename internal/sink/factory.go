package sink

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/atupatu/pccoe/internal/config"
)

// Open constructs the sink selected by cfg.
func Open(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	switch cfg.Driver {
	case config.SinkLocal, "":
		s, err := NewLocalSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SinkS3:
		if cfg.Bucket == "" {
			return nil, errors.New("sink.bucket is required for s3 storage")
		}
		region := cfg.Region
		if region == "" {
			region = "us-east-1"
		}
		s, err := NewS3Sink(ctx, S3Config{
			Bucket:   cfg.Bucket,
			Region:   region,
			Endpoint: cfg.Endpoint,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SinkGCS:
		return newGCSSink(ctx, cfg)
	case config.SinkNone:
		return Discard{}, nil
	default:
		return nil, errors.Newf("unsupported sink driver: %s", cfg.Driver)
	}
}
