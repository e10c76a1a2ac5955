//go:build !gcp

package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atupatu/pccoe/internal/config"
)

func TestOpenGCSWithoutTag(t *testing.T) {
	_, err := Open(context.Background(), config.SinkConfig{Driver: config.SinkGCS, Bucket: "b"})
	assert.ErrorContains(t, err, "-tags gcp")
}
