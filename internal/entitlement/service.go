// Package entitlement gates feature use on the tenant's plan and records
// every admitted use.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

// ParseFeatureCode returns n for a code of the form "F<n>" with n > 0.
func ParseFeatureCode(code string) (int, error) {
	digits, ok := strings.CutPrefix(code, "F")
	if !ok || digits == "" {
		return 0, apperr.ErrInvalidFeatureCode
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, apperr.ErrInvalidFeatureCode
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, apperr.ErrInvalidFeatureCode
	}
	return n, nil
}

// FeatureCode is the canonical code for feature index n.
func FeatureCode(n int) string {
	return "F" + strconv.Itoa(n)
}

// Allowed reports whether feature index n is within a plan ceiling.
func Allowed(n, ceiling int) bool {
	return n <= ceiling
}

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// UseFeature admits one use of featureCode by userID in tenantID and appends
// a usage event. The plan check and the insert share a transaction, so a
// concurrent plan change cannot slip between them.
func (s *Service) UseFeature(ctx context.Context, tenantID, userID uuid.UUID, featureCode string) (*models.UsageEvent, error) {
	n, err := ParseFeatureCode(featureCode)
	if err != nil {
		return nil, err
	}

	event := &models.UsageEvent{
		ID:       uuid.New(),
		TenantID: tenantID,
		UserID:   &userID,
		Feature:  FeatureCode(n),
	}
	err = s.store.WithTx(ctx, func(q store.Querier) error {
		t, err := q.GetTenantShared(ctx, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.ErrTenantNotFound
			}
			return err
		}
		if t.PlanID == nil {
			return apperr.ErrNoPlanSelected
		}

		plan, err := q.GetPlanByID(ctx, *t.PlanID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slog.Error("tenant references missing plan", "tenant_id", tenantID, "plan_id", *t.PlanID)
				return apperr.ErrPlanNotFound
			}
			return err
		}
		if !Allowed(n, plan.MaxFeatures) {
			return fmt.Errorf("%w: %s", apperr.ErrFeatureNotEntitled, event.Feature)
		}
		return q.InsertUsageEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}
