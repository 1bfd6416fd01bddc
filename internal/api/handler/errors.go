package handler

import (
	"errors"
	"net/http"

	"github.com/diplomatch/portal/internal/core/domain"
)

// StatusCode maps the domain error taxonomy onto HTTP. It returns 0 for
// errors outside the taxonomy.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrLoginInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLockout):
		return http.StatusLocked
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrKeyNotFound):
		return http.StatusNotFound
	}
	return 0
}

// statusOr is StatusCode with a fallback.
func statusOr(err error, fallback int) int {
	if code := StatusCode(err); code != 0 {
		return code
	}
	return fallback
}
