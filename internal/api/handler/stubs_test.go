package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// stubSession implements ports.SessionService. Unset funcs succeed.
type stubSession struct {
	nav   ports.Navigator
	state domain.Session

	registerFn      func(ctx context.Context, in domain.RegisterInput) error
	loginFn         func(ctx context.Context, email, password string) error
	updateProfileFn func(ctx context.Context, p domain.Profile) (domain.Profile, error)
	resetFn         func(ctx context.Context, uid, token, pw, confirm string) domain.Result
	forgotFn        func(ctx context.Context, email string) domain.Result

	loggedOut bool
	refreshed bool
}

var _ ports.SessionService = (*stubSession)(nil)

func (s *stubSession) Register(ctx context.Context, in domain.RegisterInput) error {
	if s.registerFn == nil {
		return nil
	}
	return s.registerFn(ctx, in)
}

func (s *stubSession) Login(ctx context.Context, email, password string) error {
	if s.loginFn == nil {
		s.state.Token = "tok"
		return nil
	}
	return s.loginFn(ctx, email, password)
}

func (s *stubSession) FetchUser(context.Context) error   { return nil }
func (s *stubSession) RestoreUser(context.Context) error { return nil }

func (s *stubSession) FetchFullProfile(context.Context) {
	s.state.FullProfile = domain.Profile{"bio": "fresh"}
}

func (s *stubSession) UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	return s.updateProfileFn(ctx, p)
}

func (s *stubSession) FetchTeamStatus(context.Context) bool     { return s.state.HasTeam }
func (s *stubSession) FetchPendingRequest(context.Context) bool { return s.state.HasPendingJoinRequest }

func (s *stubSession) RefreshTeamAndRequestStatus(context.Context) {
	s.refreshed = true
	s.state.HasTeam = true
}

func (s *stubSession) Logout(ctx context.Context) {
	s.loggedOut = true
	s.state = domain.Session{}
	if s.nav != nil {
		s.nav.Navigate(ctx, domain.PathLogin)
	}
}

func (s *stubSession) RequestPasswordReset(ctx context.Context, email string) domain.Result {
	return s.forgotFn(ctx, email)
}

func (s *stubSession) ResetPassword(ctx context.Context, uid, token, pw, confirm string) domain.Result {
	return s.resetFn(ctx, uid, token, pw, confirm)
}

func (s *stubSession) Token() string { return s.state.Token }

func (s *stubSession) User() *domain.User { return s.state.User }

func (s *stubSession) IsLoggingIn() bool { return s.state.IsLoggingIn }

func (s *stubSession) Snapshot() domain.Session { return s.state }

func (s *stubSession) PersistedToken(context.Context) string { return s.state.Token }

// newEcho returns an echo instance with the validator and an error handler
// close enough to the portal's for status assertions.
func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Error: he.Message.(string)})
			return
		}
		_ = c.JSON(statusOr(err, 500), errorResponse{Error: err.Error()})
	}
	return e
}
