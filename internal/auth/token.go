package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 60 * time.Minute

var (
	ErrExpiredCredential   = errors.New("token expired")
	ErrMalformedCredential = errors.New("invalid token")
)

// Claims is the decoded identity carried by a bearer token.
type Claims struct {
	PrincipalID uuid.UUID
	TenantID    *uuid.UUID
}

type tokenClaims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 bearer tokens under a process-wide
// secret.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret, issuer string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetClock replaces the codec's time source.
func (c *TokenCodec) SetClock(now func() time.Time) {
	c.now = now
}

func (c *TokenCodec) Issue(principalID uuid.UUID, tenantID *uuid.UUID) (string, error) {
	return c.IssueWithTTL(principalID, tenantID, c.ttl)
}

func (c *TokenCodec) IssueWithTTL(principalID uuid.UUID, tenantID *uuid.UUID, ttl time.Duration) (string, error) {
	now := c.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID.String(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if tenantID != nil {
		claims.TenantID = tenantID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks signature, algorithm and expiry and decodes the claims.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredential
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	principalID, err := uuid.Parse(tc.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrMalformedCredential)
	}

	claims := &Claims{PrincipalID: principalID}
	if tc.TenantID != "" {
		tid, err := uuid.Parse(tc.TenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad tenant claim", ErrMalformedCredential)
		}
		claims.TenantID = &tid
	}
	return claims, nil
}
