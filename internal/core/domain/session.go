package domain

import "time"

// Keys used in the persistence collaborator.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Session is a point-in-time copy of the client session. The live state is
// owned by the session service; this value is safe to hand out.
type Session struct {
	Token                 string     `json:"-"`
	TokenExpiresAt        *time.Time `json:"token_expires_at,omitempty"`
	User                  *User      `json:"user,omitempty"`
	FullProfile           Profile    `json:"full_profile,omitempty"`
	HasTeam               bool       `json:"has_team"`
	HasPendingJoinRequest bool       `json:"has_pending_join_request"`
	IsLoggingIn           bool       `json:"is_logging_in"`
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// TokenClaims are the unverified claims carried by an access token. The
// signature is checked by the remote API; the client only reads them.
type TokenClaims struct {
	Subject            string
	Role               string
	IsProfileCompleted bool
	ExpiresAt          *time.Time
}

// Result is the outcome of a stateless account call such as a password
// reset request.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}
