package models

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

const (
	MaxTenantNameLen  = 100
	MaxSubdomainLen   = 50
	MinPasswordLength = 6
)

var subdomainPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func ValidateEmail(email string) error {
	if !govalidator.IsEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func ValidateSubdomain(sub string) error {
	if len(sub) > MaxSubdomainLen || !subdomainPattern.MatchString(sub) {
		return fmt.Errorf("subdomain must match %s and be at most %d characters", subdomainPattern, MaxSubdomainLen)
	}
	return nil
}

func ValidateTenantName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > MaxTenantNameLen {
		return fmt.Errorf("tenant name must be 1 to %d characters", MaxTenantNameLen)
	}
	return nil
}

func ValidatePlan(name string, maxFeatures int) error {
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if maxFeatures < 0 || maxFeatures > MaxFeatureCeiling {
		return fmt.Errorf("max_features must be between 0 and %d", MaxFeatureCeiling)
	}
	return nil
}
