package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNotConfigured reports a missing container name or temp URL key.
	ErrNotConfigured = errors.New("object store is not configured")
	// ErrUnauthenticated reports that no authenticated account endpoint is
	// available, usually rejected credentials.
	ErrUnauthenticated = errors.New("object store authentication failed")
)

// Backend is the object store surface the coordinator needs. The coordinator
// is never on the data path (clients PUT/GET the store directly with signed
// URLs), so there is no Reader/Writer here.
type Backend interface {
	// Name returns the name of the backend implementation.
	Name() string

	// Authenticate establishes or refreshes the store session used for
	// signing. It is the only operation allowed to talk to the store's
	// control plane.
	Authenticate(ctx context.Context) error

	// Stat checks that a live object backs the given key.
	Stat(ctx context.Context, object string) error

	// TempURL computes a signed URL granting the single given method on the
	// object until expires. No round trip to the store is performed.
	TempURL(object, method string, expires time.Time) (string, error)
}
