package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCodec(t *testing.T, clock *fakeClock) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("test-secret"), WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	assert.Error(t, err)
}

func TestCodec_SignVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	claims := c.NewClaims("user@example.com", RoleAccess, 10*time.Minute)
	tok, err := c.Sign(claims)
	require.NoError(t, err)

	got, err := c.Verify(tok, RoleAccess)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, RoleAccess, got.Role)
	assert.Equal(t, claims.ID, got.ID)
	assert.Equal(t, clock.t.Add(10*time.Minute), got.ExpiresAtTime().UTC())
}

func TestCodec_Verify_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	tok, err := c.Sign(c.NewClaims("user@example.com", RoleRefresh, time.Hour))
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour - time.Second)
	_, err = c.Verify(tok, RoleRefresh)
	assert.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Second)
	_, err = c.Verify(tok, RoleRefresh)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestCodec_Verify_Rejects(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	access, err := c.Sign(c.NewClaims("user@example.com", RoleAccess, time.Hour))
	require.NoError(t, err)

	other, err := NewCodec([]byte("other-secret"))
	require.NoError(t, err)
	foreign, err := other.Sign(other.NewClaims("user@example.com", RoleAccess, time.Hour))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, c.NewClaims("user@example.com", RoleAccess, time.Hour)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := c.NewClaims("user@example.com", RoleAccess, time.Hour)
	noExp.ExpiresAt = nil
	noExpTok, err := c.Sign(noExp)
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
		role  Role
	}{
		{"wrong role", access, RoleRefresh},
		{"foreign secret", foreign, RoleAccess},
		{"alg none", none, RoleAccess},
		{"missing exp", noExpTok, RoleAccess},
		{"tampered payload", tampered, RoleAccess},
		{"garbage", "not-a-token", RoleAccess},
		{"empty", "", RoleAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token, tt.role)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestCodec_Verify_ExpiredWithForeignSecretIsInvalid(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	other, err := NewCodec([]byte("other-secret"), WithClock(func() time.Time { return clock.t.Add(-2 * time.Hour) }))
	require.NoError(t, err)
	tok, err := other.Sign(other.NewClaims("user@example.com", RoleAccess, time.Hour))
	require.NoError(t, err)

	_, err = c.Verify(tok, RoleAccess)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestCodec_Issue(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	pair, err := c.Issue("user@example.com", 600*time.Second, 86400*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 600*time.Second, pair.AccessTTL)
	assert.Equal(t, 86400*time.Second, pair.RefreshTTL)

	_, err = c.Verify(pair.AccessToken, RoleAccess)
	assert.NoError(t, err)
	_, err = c.Verify(pair.RefreshToken, RoleRefresh)
	assert.NoError(t, err)
	_, err = c.Verify(pair.AccessToken, RoleRefresh)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestCodec_Decode(t *testing.T) {
	clock := &fakeClock{t: time.Now().Add(-48 * time.Hour)}
	c := newTestCodec(t, clock)

	tok, err := c.Sign(c.NewClaims("old@example.com", RoleAccess, time.Minute))
	require.NoError(t, err)

	got, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "old@example.com", got.Email)

	_, err = c.Decode("garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
