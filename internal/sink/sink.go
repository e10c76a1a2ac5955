// Package sink persists the raw payload of an uploaded file, keyed by its
// filename. Writes are best-effort from the caller's point of view: the
// event log never depends on a sink succeeding.
package sink

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Sink accepts a named byte payload.
type Sink interface {
	// Put stores body under key, replacing anything already stored there.
	Put(ctx context.Context, key string, body io.Reader) error
}

// objectName reduces a client-supplied filename to a single path element so
// it cannot escape the sink's directory or prefix.
func objectName(key string) string {
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(key, `\`, "/")))
	if name == "/" || name == "." || name == "" {
		return "unnamed_file"
	}
	return name
}

// Discard drops every payload.
type Discard struct{}

func (Discard) Put(ctx context.Context, key string, body io.Reader) error {
	_, err := io.Copy(io.Discard, body)
	return err
}

// Close releases s if it holds resources.
func Close(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
