package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
)

const maxBodyBytes = 1 << 20

type message struct {
	Detail string `json:"detail"`
}

func writeMessage(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusOK, message{Detail: fmt.Sprintf(format, args...)})
}

// decode reads a JSON body into dst, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		apperr.Respond(w, r, fmt.Errorf("%w: invalid request body", apperr.ErrInvalidInput))
		return false
	}
	return true
}
