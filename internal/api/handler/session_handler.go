package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// SessionHandler exposes the session actions of the portal.
type SessionHandler struct {
	session ports.SessionService
	nav     *PendingNavigator
	log     zerolog.Logger
}

// NewSessionHandler builds the handler. nav must be the Navigator the
// session was constructed with, or nil.
func NewSessionHandler(session ports.SessionService, nav *PendingNavigator, log zerolog.Logger) *SessionHandler {
	if nav == nil {
		nav = NewPendingNavigator()
	}
	return &SessionHandler{session: session, nav: nav, log: log}
}

// Show returns the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /session [get]
func (h *SessionHandler) Show(c echo.Context) error {
	return c.JSON(http.StatusOK, viewOf(h.session.Snapshot()))
}

// Login signs in with email and password.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  loginFailureResponse
// @Failure      409   {object}  loginFailureResponse
// @Failure      422   {object}  errorResponse
// @Failure      423   {object}  loginFailureResponse
// @Failure      502   {object}  loginFailureResponse
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := h.nav.Scope(c.Request().Context())
	if err := h.session.Login(ctx, req.Email, req.Password); err != nil {
		var lerr *domain.LoginError
		if !errors.As(err, &lerr) {
			return err
		}
		return c.JSON(statusOr(err, http.StatusUnauthorized), loginFailureResponse{
			Error:        lerr.Message,
			Blocked:      lerr.Blocked,
			BlockedUntil: lerr.BlockedUntil,
		})
	}

	return c.JSON(http.StatusOK, h.done(ctx, "Logged in"))
}

// Register creates an account.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  actionResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := h.nav.Scope(c.Request().Context())
	err := h.session.Register(ctx, domain.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})
	if err != nil {
		var rerr *domain.RegistrationError
		if !errors.As(err, &rerr) {
			return err
		}
		return c.JSON(statusOr(err, http.StatusBadRequest), errorResponse{Error: rerr.Message})
	}

	return c.JSON(http.StatusCreated, h.done(ctx, "Registration successful"))
}

// Logout ends the session. It always succeeds.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  actionResponse
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := h.nav.Scope(c.Request().Context())
	h.session.Logout(ctx)
	return c.JSON(http.StatusOK, h.done(ctx, "Logged out"))
}

// ForgotPassword requests a password reset link.
//
// @Summary      Request a password reset
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  actionResponse
// @Failure      422   {object}  errorResponse
// @Router       /session/forgot-password [post]
func (h *SessionHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return h.result(c, h.session.RequestPasswordReset(c.Request().Context(), req.Email))
}

// ResetPassword confirms a reset with the uid and token from the mailed link.
//
// @Summary      Confirm a password reset
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        uid    path      string                true  "Encoded user id"
// @Param        token  path      string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  actionResponse
// @Failure      400    {object}  actionResponse
// @Failure      422    {object}  errorResponse
// @Router       /session/reset-password/{uid}/{token} [put]
func (h *SessionHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res := h.session.ResetPassword(c.Request().Context(), req.UID, req.Token, req.NewPassword, req.ConfirmPassword)
	return h.result(c, res)
}

// Profile reloads and returns the full profile.
//
// @Summary      Full profile
// @Tags         session
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /session/profile [get]
func (h *SessionHandler) Profile(c echo.Context) error {
	if h.session.Token() == "" {
		return domain.ErrNoToken
	}
	h.session.FetchFullProfile(c.Request().Context())
	return c.JSON(http.StatusOK, profileResponse{Profile: h.session.Snapshot().FullProfile})
}

// UpdateProfile saves the full profile and marks it complete.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Profile fields"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /session/profile [put]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var profile domain.Profile
	if err := c.Bind(&profile); err != nil || profile == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := h.nav.Scope(c.Request().Context())
	saved, err := h.session.UpdateProfile(ctx, profile)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Profile: saved, NavigateTo: h.nav.Take(ctx)})
}

// RefreshTeamStatus reloads the team and join request flags.
//
// @Summary      Refresh team status
// @Tags         session
// @Produce      json
// @Success      200  {object}  teamStatusResponse
// @Router       /session/team-status/refresh [post]
func (h *SessionHandler) RefreshTeamStatus(c echo.Context) error {
	h.session.RefreshTeamAndRequestStatus(c.Request().Context())
	snap := h.session.Snapshot()
	return c.JSON(http.StatusOK, teamStatusResponse{
		HasTeam:               snap.HasTeam,
		HasPendingJoinRequest: snap.HasPendingJoinRequest,
	})
}

func (h *SessionHandler) done(ctx context.Context, msg string) actionResponse {
	view := viewOf(h.session.Snapshot())
	return actionResponse{
		Success:    true,
		Message:    msg,
		NavigateTo: h.nav.Take(ctx),
		Session:    &view,
	}
}

func (h *SessionHandler) result(c echo.Context, res domain.Result) error {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	return c.JSON(status, actionResponse{Success: res.Success, Message: res.Message})
}
