package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// LocalSink writes payloads into a directory on the local filesystem.
type LocalSink struct {
	dir string
}

// NewLocalSink creates dir if needed.
func NewLocalSink(dir string) (*LocalSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}
	return &LocalSink{dir: dir}, nil
}

// Put writes body to dir/<base name of key>. The file is written to a
// temporary name first so readers never see a partial upload.
func (s *LocalSink) Put(ctx context.Context, key string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, objectName(key))

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return errors.Wrap(err, "failed to create upload file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to move upload into %s", path)
	}
	return nil
}

