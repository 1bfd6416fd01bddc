package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diplomatch/portal/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"no token", domain.ErrNoToken, http.StatusUnauthorized, "authentication required"},
		{"remote validation", fmt.Errorf("save: %w", &domain.RemoteError{StatusCode: 400, Message: "bio is required"}), http.StatusUnprocessableEntity, "bio is required"},
		{"lockout", &domain.RemoteError{StatusCode: 429}, http.StatusLocked, "account locked"},
		{"unreachable", &domain.RemoteError{Err: errors.New("dial tcp")}, http.StatusBadGateway, "remote api unavailable"},
		{"profile", &domain.ProfileUpdateError{Err: &domain.RemoteError{StatusCode: 500}}, http.StatusBadGateway, "Failed to update profile"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, resp.Error)
			}
		})
	}
}
