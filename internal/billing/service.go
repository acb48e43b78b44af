// Package billing aggregates recorded usage per tenant and triggers the
// billing summary notification.
package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/entitlement"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/notify"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

type Summary struct {
	TenantID   uuid.UUID             `json:"tenant_id"`
	Features   []models.FeatureCount `json:"features"`
	TotalUsage int                   `json:"total_usage"`
}

// Text renders the summary as "F1: 3; F2: 1", or "No usage." when empty.
func (s *Summary) Text() string {
	if len(s.Features) == 0 {
		return "No usage."
	}
	parts := make([]string, len(s.Features))
	for i, f := range s.Features {
		parts[i] = fmt.Sprintf("%s: %d", f.Feature, f.Count)
	}
	return strings.Join(parts, "; ")
}

type UsageReader interface {
	CountUsageByFeature(ctx context.Context, tenantID uuid.UUID) ([]models.FeatureCount, error)
}

type Notifier interface {
	Dispatch(n notify.BillingNotification) bool
}

type Service struct {
	usage    UsageReader
	notifier Notifier
}

func NewService(usage UsageReader, notifier Notifier) *Service {
	return &Service{usage: usage, notifier: notifier}
}

var _ UsageReader = (store.Querier)(nil)

// Summarize counts a tenant's usage events per feature in a single read.
func (s *Service) Summarize(ctx context.Context, tenantID uuid.UUID) (*Summary, error) {
	counts, err := s.usage.CountUsageByFeature(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}
	sortByFeature(counts)

	sum := &Summary{TenantID: tenantID, Features: counts}
	for _, c := range counts {
		sum.TotalUsage += c.Count
	}
	return sum, nil
}

// SendBillingSummary summarizes t's usage and queues the notification to
// recipient. It returns once the notification is handed off; delivery
// problems are logged by the dispatcher and never reach the caller.
func (s *Service) SendBillingSummary(ctx context.Context, t *models.Tenant, recipient string) (*Summary, error) {
	sum, err := s.Summarize(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Dispatch(notify.BillingNotification{
		TenantID:   t.ID,
		Email:      recipient,
		Summary:    sum.Text(),
		TotalUsage: sum.TotalUsage,
	})
	return sum, nil
}

func sortByFeature(counts []models.FeatureCount) {
	sort.Slice(counts, func(i, j int) bool {
		a, errA := entitlement.ParseFeatureCode(counts[i].Feature)
		b, errB := entitlement.ParseFeatureCode(counts[j].Feature)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return counts[i].Feature < counts[j].Feature
		}
	})
}
