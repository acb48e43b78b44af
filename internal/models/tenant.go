package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Subdomain string     `json:"subdomain" db:"subdomain"`
	PlanID    *uuid.UUID `json:"plan_id,omitempty" db:"plan_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Plan is a subscription tier unlocking features F1..F<MaxFeatures>.
type Plan struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	MaxFeatures int       `json:"max_features" db:"max_features"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MaxFeatureCeiling bounds Plan.MaxFeatures.
const MaxFeatureCeiling = 10
