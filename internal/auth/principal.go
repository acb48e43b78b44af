package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	User   *models.User
	Claims *Claims
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type PrincipalResolver struct {
	codec *TokenCodec
	users UserLookup
}

func NewPrincipalResolver(codec *TokenCodec, users UserLookup) *PrincipalResolver {
	return &PrincipalResolver{codec: codec, users: users}
}

// Resolve turns an Authorization header into a Principal. Every client-side
// failure is reported as apperr.ErrUnauthenticated.
func (r *PrincipalResolver) Resolve(ctx context.Context, header string) (*Principal, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}

	claims, err := r.codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	if claims.PrincipalID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid token payload", apperr.ErrUnauthenticated)
	}

	user, err := r.users.GetUserByID(ctx, claims.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", apperr.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}

	if user.IsSuperadmin() {
		claims.TenantID = nil
	} else if claims.TenantID != nil && !user.BelongsTo(*claims.TenantID) {
		return nil, fmt.Errorf("%w: token tenant mismatch", apperr.ErrUnauthenticated)
	}

	return &Principal{User: user, Claims: claims}, nil
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
