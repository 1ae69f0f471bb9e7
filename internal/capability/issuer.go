// Package capability mints short-lived, scoped URLs granting exactly one
// storage operation, without exposing long-lived credentials to callers.
package capability

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/luminahq/lumina/internal/storage"
	"github.com/pkg/errors"
)

// An Operation is the single storage verb a capability grants.
type Operation int

const (
	// Write grants one PUT to a fresh derived key.
	Write Operation = iota
	// Read grants one GET of an existing key.
	Read
)

// A Class is the expiry class of a read capability.
type Class int

const (
	// ReadStandard covers private browsing sessions.
	ReadStandard Class = iota
	// ReadExtended covers explicit share requests.
	ReadExtended
)

// Expiry policy. Write capabilities are long enough for an interactive
// upload and short enough to bound credential exposure.
const (
	WriteTTL        = 5 * time.Minute
	ReadStandardTTL = time.Hour
	ReadExtendedTTL = 24 * time.Hour
)

// A Capability is a signed, time-limited authorization for one storage
// operation. It is rebuilt on every request and never persisted.
type Capability struct {
	Operation   Operation `json:"-"`
	Class       Class     `json:"-"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	URL         string    `json:"url"`
}

// An Issuer computes capabilities against a storage backend.
// It never retries; retry policy belongs to the caller.
type Issuer struct {
	backend storage.Backend
	now     func() time.Time
}

// NewIssuer returns a new Issuer.
func NewIssuer(backend storage.Backend) *Issuer {
	return &Issuer{
		backend: backend,
		now:     time.Now,
	}
}

// IssueWrite mints a PUT capability bound to a key derived from the owner,
// the sanitized file name and the current millisecond timestamp.
func (i *Issuer) IssueWrite(ownerID, rawFileName, declaredContentType string) (Capability, error) {
	at := i.now()
	key := DeriveKey(ownerID, rawFileName, at)
	expires := at.Add(WriteTTL)

	url, err := i.backend.TempURL(key, http.MethodPut, expires)
	if err != nil {
		return Capability{}, errors.Wrap(err, "could not issue write capability")
	}

	return Capability{
		Operation:   Write,
		ObjectKey:   key,
		ContentType: declaredContentType,
		ExpiresAt:   expires,
		URL:         url,
	}, nil
}

// IssueRead mints a GET capability for an existing key with the given
// expiry class.
func (i *Issuer) IssueRead(objectKey string, class Class) (Capability, error) {
	ttl := ReadStandardTTL
	if class == ReadExtended {
		ttl = ReadExtendedTTL
	}
	expires := i.now().Add(ttl)

	url, err := i.backend.TempURL(objectKey, http.MethodGet, expires)
	if err != nil {
		return Capability{}, errors.Wrap(err, "could not issue read capability")
	}

	return Capability{
		Operation: Read,
		Class:     class,
		ObjectKey: objectKey,
		ExpiresAt: expires,
		URL:       url,
	}, nil
}

// IsConfiguration returns true when err reports a missing setting, so
// operators can tell "not set up" from "misconfigured credentials".
func IsConfiguration(err error) bool {
	return errors.Cause(err) == storage.ErrNotConfigured
}

// IsCredential returns true when err reports rejected store credentials.
func IsCredential(err error) bool {
	return errors.Cause(err) == storage.ErrUnauthenticated
}

var unsafe = regexp.MustCompile(`[^A-Za-z0-9.]`)

// Sanitize replaces every character outside [A-Za-z0-9.] with an underscore.
func Sanitize(fileName string) string {
	return unsafe.ReplaceAllString(fileName, "_")
}

// DeriveKey builds the storage key for a fresh upload:
// uploads/{owner}/{millis}-{sanitizedName}. The timestamp avoids collisions
// without a coordination step; the name keeps the key human-traceable.
func DeriveKey(ownerID, rawFileName string, at time.Time) string {
	return fmt.Sprintf("uploads/%s/%d-%s", ownerID, at.UnixMilli(), Sanitize(rawFileName))
}
