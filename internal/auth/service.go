package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

type PasswordMatcher interface {
	Matches(hash, password string) bool
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

var errBadCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)

// Service exchanges email/password credentials for bearer tokens.
type Service struct {
	users  store.Querier
	codec  *TokenCodec
	hasher PasswordMatcher
}

func NewService(users store.Querier, codec *TokenCodec, hasher PasswordMatcher) *Service {
	return &Service{users: users, codec: codec, hasher: hasher}
}

func (s *Service) LoginSuperadmin(ctx context.Context, email, password string) (*TokenResponse, error) {
	u, err := s.users.GetSuperadminByEmail(ctx, email)
	if err != nil {
		return nil, s.lookupFailed(err)
	}
	return s.issue(u, password)
}

// LoginTenant authenticates a member of tenant t. It is only valid on a
// tenant host.
func (s *Service) LoginTenant(ctx context.Context, t *models.Tenant, email, password string) (*TokenResponse, error) {
	if t == nil {
		return nil, apperr.ErrTenantRequired
	}
	u, err := s.users.GetTenantUserByEmail(ctx, t.ID, email)
	if err != nil {
		return nil, s.lookupFailed(err)
	}
	return s.issue(u, password)
}

func (s *Service) lookupFailed(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errBadCredentials
	}
	return fmt.Errorf("login: %w", err)
}

func (s *Service) issue(u *models.User, password string) (*TokenResponse, error) {
	if !s.hasher.Matches(u.PasswordHash, password) {
		return nil, errBadCredentials
	}
	token, err := s.codec.Issue(u.ID, u.TenantID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}
