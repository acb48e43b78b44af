package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSubdomain(t *testing.T) {
	for _, ok := range []string{"acme", "Acme-1", "a_b", strings.Repeat("x", 50)} {
		assert.NoError(t, ValidateSubdomain(ok), ok)
	}
	for _, bad := range []string{"", "a.b", "a b", "ümlaut", strings.Repeat("x", 51)} {
		assert.Error(t, ValidateSubdomain(bad), bad)
	}
}

func TestValidatePlan(t *testing.T) {
	assert.NoError(t, ValidatePlan("Basic", 0))
	assert.NoError(t, ValidatePlan("Max", 10))
	assert.Error(t, ValidatePlan("Too", 11))
	assert.Error(t, ValidatePlan("Neg", -1))
	assert.Error(t, ValidatePlan("", 3))
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateEmail("admin@acme.io"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.NoError(t, ValidatePassword("secret"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidateTenantName(""))
	assert.Error(t, ValidateTenantName(strings.Repeat("n", 101)))
}
