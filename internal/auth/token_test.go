package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("s3cret", "tenantplatform", time.Hour)
	uid, tid := uuid.New(), uuid.New()

	tok, err := codec.Issue(uid, &tid)
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.PrincipalID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tid, *claims.TenantID)
}

func TestTokenWithoutTenant(t *testing.T) {
	codec := NewTokenCodec("s3cret", "", 0)
	uid := uuid.New()

	tok, err := codec.Issue(uid, nil)
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.PrincipalID)
	assert.Nil(t, claims.TenantID)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec("s3cret", "", time.Minute)
	codec.SetClock(func() time.Time { return now })

	tok, err := codec.Issue(uuid.New(), nil)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = codec.Verify(tok)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = codec.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestTokenDefaultTTLIsSixtyMinutes(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec("s3cret", "", 0)
	codec.SetClock(func() time.Time { return now })

	tok, err := codec.Issue(uuid.New(), nil)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = codec.Verify(tok)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = codec.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestTokenTamperRejected(t *testing.T) {
	codec := NewTokenCodec("s3cret", "", time.Hour)
	tok, err := codec.Issue(uuid.New(), nil)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := codec.Verify(string(b))
		assert.Error(t, err, "byte %d flipped", i)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := NewTokenCodec("one", "", time.Hour).Issue(uuid.New(), nil)
	require.NoError(t, err)

	_, err = NewTokenCodec("two", "", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestTokenAlgorithmPinned(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	codec := NewTokenCodec("s3cret", "", time.Hour)
	_, err = codec.Verify(none)
	assert.ErrorIs(t, err, ErrMalformedCredential)
	_, err = codec.Verify(hs512)
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestTokenWithoutExpiryRejected(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewTokenCodec("s3cret", "", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestTokenGarbage(t *testing.T) {
	codec := NewTokenCodec("s3cret", "", time.Hour)
	for _, tok := range []string{"", "abc", strings.Repeat("x.", 3)} {
		_, err := codec.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformedCredential, tok)
	}
}
