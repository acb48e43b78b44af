// Package apperr defines the failure taxonomy shared by every component and
// its mapping onto HTTP status codes.
package apperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindPaymentRequired
)

// Error is a categorised failure. Sentinels below are compared with errors.Is,
// so callers may wrap them with fmt.Errorf("%w: detail", ...).
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrInvalidInput       = &Error{KindInvalid, "INVALID_INPUT", "invalid input"}
	ErrMissingHost        = &Error{KindInvalid, "MISSING_HOST", "bad request: no host header"}
	ErrTenantRequired     = &Error{KindInvalid, "TENANT_REQUIRED", "tenant login should be done on tenant subdomain"}
	ErrInvalidFeatureCode = &Error{KindInvalid, "INVALID_FEATURE_CODE", "invalid feature code"}

	ErrUnauthenticated = &Error{KindUnauthenticated, "UNAUTHENTICATED", "not authenticated"}

	ErrForbidden          = &Error{KindForbidden, "FORBIDDEN", "operation not allowed"}
	ErrFeatureNotEntitled = &Error{KindForbidden, "FEATURE_NOT_ENTITLED", "feature is not available for your plan"}

	ErrNotFound       = &Error{KindNotFound, "NOT_FOUND", "resource not found"}
	ErrTenantNotFound = &Error{KindNotFound, "TENANT_NOT_FOUND", "tenant not found"}

	ErrDuplicateSubdomain     = &Error{KindConflict, "DUPLICATE_SUBDOMAIN", "subdomain already in use"}
	ErrDuplicateEmailInTenant = &Error{KindConflict, "DUPLICATE_EMAIL", "email already in use in this tenant"}
	ErrEmailTaken             = &Error{KindConflict, "EMAIL_TAKEN", "email already taken by another account"}
	ErrPlanNameConflict       = &Error{KindConflict, "PLAN_NAME_CONFLICT", "plan name already exists"}

	ErrNoPlanSelected = &Error{KindPaymentRequired, "NO_PLAN_SELECTED", "no plan selected, please select a plan to use features"}

	// ErrPlanNotFound marks a tenant pointing at a plan that does not exist.
	// It is a consistency fault, never a user mistake.
	ErrPlanNotFound = &Error{KindInternal, "PLAN_NOT_FOUND", "plan assigned to tenant not found"}
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code for err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}

// MessageOf returns the client-facing message of the first *Error in err's
// chain. Wrapping context added on the way up is not included.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err as a JSON error body. Only the sentinel message reaches
// the client; internal failures are reported generically.
func Write(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	msg := MessageOf(err)
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": CodeOf(err)})
}

// Respond logs the full error chain and writes the client response.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	level := slog.LevelDebug
	if KindOf(err) == KindInternal {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"code", CodeOf(err),
		"error", err,
	)
	Write(w, err)
}
