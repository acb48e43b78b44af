package tenant

import (
	"strings"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
)

// SubdomainFromHost extracts the tenant subdomain from a Host header value.
// An empty result with a nil error means the request targets the global
// context.
//
//	localhost, 127.0.0.1         -> ""
//	acme.localhost:8000          -> "acme"
//	acme.example.com             -> "acme"
//	example.com                  -> ""
func SubdomainFromHost(host string) (string, error) {
	if host == "" {
		return "", apperr.ErrMissingHost
	}
	host, _, _ = strings.Cut(host, ":")

	if host == "localhost" || host == "127.0.0.1" {
		return "", nil
	}
	if strings.HasSuffix(host, ".localhost") {
		sub, _, _ := strings.Cut(host, ".")
		return sub, nil
	}

	labels := strings.Split(host, ".")
	if len(labels) > 2 {
		return labels[0], nil
	}
	return "", nil
}
