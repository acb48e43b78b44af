package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageEvent records one feature invocation. Events are append-only.
type UsageEvent struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Feature   string     `json:"feature" db:"feature"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}
