// Package datasource defines the byte-stream abstraction the extractor reads
// order exports from. Implementations exist for local files (file.Local) and
// HTTP endpoints (httpds.Remote); the extractor only sees this interface.
package datasource

import (
	"context"
	"io"
)

// Source is a named, openable stream of raw input bytes.
//
// Name returns a path-like identifier for the source (a filesystem path or
// the terminal path segment of a URL). Callers use it for logging and for
// detecting the input format from the file extension.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
