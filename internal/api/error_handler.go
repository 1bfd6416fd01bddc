package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diplomatch/portal/internal/api/handler"
	"github.com/diplomatch/portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if code := handler.StatusCode(err); code != 0 {
		if code >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("path", c.Path()).Msg("remote api failure")
		}
		return code, publicMessage(err)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// publicMessage returns the text shown to the client for a domain error.
func publicMessage(err error) string {
	var pe *domain.ProfileUpdateError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}

	switch {
	case errors.Is(err, domain.ErrLoginInProgress):
		return "login already in progress"
	case errors.Is(err, domain.ErrLockout):
		return "account locked"
	case errors.Is(err, domain.ErrAuth):
		return "authentication required"
	case errors.Is(err, domain.ErrValidation):
		return "validation failed"
	case errors.Is(err, domain.ErrNetwork):
		return "remote api unavailable"
	case errors.Is(err, domain.ErrKeyNotFound):
		return "not found"
	}
	return "internal server error"
}
