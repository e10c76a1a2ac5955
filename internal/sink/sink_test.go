package sink

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atupatu/pccoe/internal/config"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"/abs/path/doc.pdf", "doc.pdf"},
		{`..\..\win.ini`, "win.ini"},
		{"", "unnamed_file"},
		{"..", "unnamed_file"},
		{"/", "unnamed_file"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, objectName(tt.key))
		})
	}
}

func TestLocalSinkPut(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalSink(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "a.png", strings.NewReader("first")))

	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Same filename overwrites.
	require.NoError(t, s.Put(ctx, "a.png", strings.NewReader("second")))
	data, err = os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestLocalSinkStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	s, err := NewLocalSink(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "../escape.txt", strings.NewReader("x")))

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)
}

func TestLocalSinkCancelledContext(t *testing.T) {
	s, err := NewLocalSink(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "a.png", strings.NewReader("x")), context.Canceled)
}

func TestDiscard(t *testing.T) {
	r := strings.NewReader("payload")
	require.NoError(t, Discard{}.Put(context.Background(), "a.png", r))
	assert.Equal(t, 0, r.Len(), "body should be drained")
}

type closingSink struct {
	Discard
	closed bool
	err    error
}

func (c *closingSink) Close() error {
	c.closed = true
	return c.err
}

func TestClose(t *testing.T) {
	assert.NoError(t, Close(Discard{}))

	c := &closingSink{}
	require.NoError(t, Close(c))
	assert.True(t, c.closed)

	failing := &closingSink{err: errors.New("client gone")}
	assert.ErrorContains(t, Close(failing), "client gone")
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3SinkPut(t *testing.T) {
	client := &fakeS3{}
	s := &S3Sink{client: client, bucket: "uploads", prefix: "raw/"}

	require.NoError(t, s.Put(context.Background(), "../x/report.pdf", bytes.NewReader([]byte("pdf"))))

	require.NotNil(t, client.input)
	assert.Equal(t, "uploads", *client.input.Bucket)
	assert.Equal(t, "raw/report.pdf", *client.input.Key)
	assert.Equal(t, "pdf", string(client.body))
}

func TestS3SinkPutError(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	s := &S3Sink{client: client, bucket: "uploads"}

	err := s.Put(context.Background(), "a.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.png")
	assert.Contains(t, err.Error(), "access denied")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "u")
		s, err := Open(ctx, config.SinkConfig{Driver: config.SinkLocal, Dir: dir})
		require.NoError(t, err)
		assert.IsType(t, &LocalSink{}, s)
		assert.DirExists(t, dir)
	})

	t.Run("none", func(t *testing.T) {
		s, err := Open(ctx, config.SinkConfig{Driver: config.SinkNone})
		require.NoError(t, err)
		assert.IsType(t, Discard{}, s)
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		_, err := Open(ctx, config.SinkConfig{Driver: config.SinkS3})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, config.SinkConfig{Driver: "ftp"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ftp")
	})
}
