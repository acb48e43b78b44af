// Package plan manages the catalogue of subscription plans.
package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

type CreateInput struct {
	Name        string `json:"name"`
	MaxFeatures int    `json:"max_features"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Plan, error) {
	if err := models.ValidatePlan(in.Name, in.MaxFeatures); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	p := &models.Plan{ID: uuid.New(), Name: in.Name, MaxFeatures: in.MaxFeatures}
	err := s.store.WithTx(ctx, func(q store.Querier) error {
		_, err := q.GetPlanByName(ctx, in.Name)
		switch {
		case err == nil:
			return apperr.ErrPlanNameConflict
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return q.CreatePlan(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]models.Plan, error) {
	return s.store.ListPlans(ctx)
}
