package capability

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/luminahq/lumina/internal/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	err        error
	lastMethod string
}

func (b *fakeBackend) Name() string { return "fake" }
func (b *fakeBackend) Authenticate(_ context.Context) error { return b.err }
func (b *fakeBackend) Stat(_ context.Context, _ string) error { return b.err }
func (b *fakeBackend) TempURL(object, method string, expires time.Time) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.lastMethod = method
	return fmt.Sprintf("http://store.test/v1/AUTH_lumina/assets/%s?temp_url_expires=%d", object, expires.Unix()), nil
}

func issuerAt(backend storage.Backend, at time.Time) *Issuer {
	issuer := NewIssuer(backend)
	issuer.now = func() time.Time { return at }
	return issuer
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "My_Photo.PNG", Sanitize("My Photo.PNG"))
	assert.Equal(t, "a.b.c", Sanitize("a.b.c"))
	assert.Equal(t, "___", Sanitize("é/ü"))

	// Idempotent for any input.
	for _, name := range []string{"My Photo.PNG", "../../etc/passwd", "résumé (final).pdf", ""} {
		assert.Equal(t, Sanitize(name), Sanitize(Sanitize(name)))
	}
}

func TestDeriveKey(t *testing.T) {
	shape := regexp.MustCompile(`^uploads/[^/]+/\d+-[A-Za-z0-9._]+$`)

	at := time.Now()
	for _, name := range []string{"My Photo.PNG", "cat.jpg", "weird~!@#$%^&*()name"} {
		key := DeriveKey("user-42", name, at)
		assert.Regexp(t, shape, key)
	}

	key := DeriveKey("user-42", "My Photo.PNG", time.UnixMilli(1756700000000))
	assert.Equal(t, "uploads/user-42/1756700000000-My_Photo.PNG", key)
}

func TestIssueWrite(t *testing.T) {
	backend := &fakeBackend{}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	cap, err := issuerAt(backend, now).IssueWrite("user-42", "My Photo.PNG", "image/png")
	require.NoError(t, err)

	assert.Equal(t, Write, cap.Operation)
	assert.Equal(t, http.MethodPut, backend.lastMethod)
	assert.Equal(t, "image/png", cap.ContentType)
	assert.Equal(t, now.Add(WriteTTL), cap.ExpiresAt)
	assert.Regexp(t, `^uploads/user-42/\d{13}-My_Photo\.PNG$`, cap.ObjectKey)
	assert.Contains(t, cap.URL, cap.ObjectKey)
}

func TestIssueReadClasses(t *testing.T) {
	backend := &fakeBackend{}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	issuer := issuerAt(backend, now)

	standard, err := issuer.IssueRead("uploads/user-42/1-cat.jpg", ReadStandard)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, backend.lastMethod)
	assert.Equal(t, now.Add(ReadStandardTTL), standard.ExpiresAt)

	extended, err := issuer.IssueRead("uploads/user-42/1-cat.jpg", ReadExtended)
	require.NoError(t, err)
	assert.Equal(t, now.Add(ReadExtendedTTL), extended.ExpiresAt)
}

func TestIssueReadDistinctOverTime(t *testing.T) {
	backend := &fakeBackend{}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	first, err := issuerAt(backend, now).IssueRead("uploads/user-42/1-cat.jpg", ReadStandard)
	require.NoError(t, err)
	second, err := issuerAt(backend, now.Add(time.Minute)).IssueRead("uploads/user-42/1-cat.jpg", ReadStandard)
	require.NoError(t, err)

	assert.NotEqual(t, first.URL, second.URL)
}

func TestIssuanceErrorClasses(t *testing.T) {
	issuer := NewIssuer(&fakeBackend{err: errors.WithStack(storage.ErrNotConfigured)})
	_, err := issuer.IssueWrite("user-42", "cat.jpg", "image/jpeg")
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
	assert.False(t, IsCredential(err))

	issuer = NewIssuer(&fakeBackend{err: errors.WithStack(storage.ErrUnauthenticated)})
	_, err = issuer.IssueRead("uploads/user-42/1-cat.jpg", ReadStandard)
	require.Error(t, err)
	assert.True(t, IsCredential(err))
	assert.False(t, IsConfiguration(err))
}
