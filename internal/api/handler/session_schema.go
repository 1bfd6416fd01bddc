package handler

import (
	"time"

	"github.com/diplomatch/portal/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role"             validate:"required,oneof=Student Supervisor"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	UID             string `param:"uid"              validate:"required"`
	Token           string `param:"token"            validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// sessionView is the public shape of the session. The token itself is never
// rendered.
type sessionView struct {
	SignedIn bool `json:"authenticated"`
	domain.Session
}

type actionResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message,omitempty"`
	NavigateTo string       `json:"navigate_to,omitempty"`
	Session    *sessionView `json:"session,omitempty"`
}

type loginFailureResponse struct {
	Error        string     `json:"error"`
	Blocked      bool       `json:"blocked"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

type profileResponse struct {
	Profile    domain.Profile `json:"profile"`
	NavigateTo string         `json:"navigate_to,omitempty"`
}

type teamStatusResponse struct {
	HasTeam               bool `json:"has_team"`
	HasPendingJoinRequest bool `json:"has_pending_join_request"`
}

type pageResponse struct {
	View    string      `json:"view"`
	Path    string      `json:"path"`
	Rule    string      `json:"rule,omitempty"`
	Session sessionView `json:"session"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func viewOf(s domain.Session) sessionView {
	return sessionView{SignedIn: s.Authenticated(), Session: s}
}
