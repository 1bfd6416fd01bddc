package ports

import (
	"context"

	"github.com/diplomatch/portal/internal/core/domain"
)

// RegisterRequest is the body of POST /api/users/register/.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

// RegisterResponse is the success body of a registration. Token is only set
// by deployments that sign the user in on registration.
type RegisterResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
	Token   string `json:"token"`
}

// LoginResponse is the token pair returned by POST /api/users/login/.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ResetPasswordRequest is the body of PUT /api/users/reset-password/{uid}/{token}/.
type ResetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// APIClient is the HTTP collaborator. Every method returns a
// *domain.RemoteError on failure. Authenticated calls take the bearer token
// explicitly so the client holds no session state.
type APIClient interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Me(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, token string) (domain.Profile, error)
	UpdateProfile(ctx context.Context, token string, profile domain.Profile) (domain.Profile, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, uid, resetToken string, req ResetPasswordRequest) error
	MyTeam(ctx context.Context, token string) (domain.TeamMembership, error)
	MyJoinRequest(ctx context.Context, token string) (*domain.JoinRequest, error)
}
