package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when a blob is absent from the store.
var ErrObjectNotFound = errors.New("blob object not found")

// Store is the blob store collaborator. Objects are addressed by container
// and name; implementations stream content and never buffer it on disk.
type Store interface {
	// Upload stores an object and returns its uri.
	Upload(ctx context.Context, container, name string, r io.Reader, size int64, contentType string) (string, error)
	// Download retrieves an object's content as a stream.
	Download(ctx context.Context, container, name string) (io.ReadCloser, error)
	// Delete removes an object. It reports false without error when the
	// object was already absent.
	Delete(ctx context.Context, container, name string) (bool, error)
	// Exists reports whether an object is present.
	Exists(ctx context.Context, container, name string) (bool, error)
	// PresignGet returns a time-limited URL granting access to the object
	// without standing credentials.
	PresignGet(ctx context.Context, container, name string, expiry time.Duration) (string, error)
}
