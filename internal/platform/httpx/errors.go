package httpx

import (
	"errors"
	"net/http"

	"github.com/homeward-pm/homeward/internal/shared"
)

// RespondError is the fallback mapping for errors a handler has no more
// specific response for.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
