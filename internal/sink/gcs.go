//go:build gcp

package sink

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
)

// GCSSink uploads payloads to a Google Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink creates a GCS-backed sink using application default credentials.
func NewGCSSink(ctx context.Context, bucket, prefix string) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCS client")
	}
	return &GCSSink{client: client, bucket: bucket, prefix: prefix}, nil
}

// Put streams body to prefix+name.
func (s *GCSSink) Put(ctx context.Context, key string, body io.Reader) error {
	objectPath := s.prefix + objectName(key)

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = "application/octet-stream"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "gcs write failed for %s", objectPath)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "gcs close failed for %s", objectPath)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
