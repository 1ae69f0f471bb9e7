package storage

import (
	"context"
	"time"

	"github.com/ncw/swift/v2"
	"github.com/pkg/errors"
)

type swiftBackend struct {
	conn      *swift.Connection
	container string
	secret    string
}

// NewSwift returns a Backend signing temp URLs against an OpenStack Swift
// account. The secret is the account's X-Account-Meta-Temp-URL-Key.
func NewSwift(conn *swift.Connection, container, secret string) Backend {
	return &swiftBackend{
		conn:      conn,
		container: container,
		secret:    secret,
	}
}

func (b *swiftBackend) Name() string {
	return "swift"
}

func (b *swiftBackend) Authenticate(ctx context.Context) error {
	if b.conn.AuthUrl == "" {
		return errors.Wrap(ErrNotConfigured, "authenticate: no auth url")
	}

	if err := b.conn.Authenticate(ctx); err != nil {
		return errors.Wrapf(ErrUnauthenticated, "authenticate: %s", err)
	}
	return nil
}

func (b *swiftBackend) Stat(ctx context.Context, object string) error {
	if err := b.verify(); err != nil {
		return err
	}

	_, _, err := b.conn.Object(ctx, b.container, object)
	return errors.Wrap(err, "could not stat object")
}

func (b *swiftBackend) TempURL(object, method string, expires time.Time) (string, error) {
	if err := b.verify(); err != nil {
		return "", err
	}

	return b.conn.ObjectTempUrl(b.container, object, b.secret, method, expires), nil
}

func (b *swiftBackend) verify() error {
	if b.container == "" || b.secret == "" {
		return errors.WithStack(ErrNotConfigured)
	}
	if !b.conn.Authenticated() {
		return errors.WithStack(ErrUnauthenticated)
	}
	return nil
}
