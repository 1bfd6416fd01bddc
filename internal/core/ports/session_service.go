package ports

import (
	"context"

	"github.com/diplomatch/portal/internal/core/domain"
)

// SessionService owns the client session. It is the only writer of session
// state; everything else reads through it.
type SessionService interface {
	Register(ctx context.Context, in domain.RegisterInput) error
	Login(ctx context.Context, email, password string) error
	FetchUser(ctx context.Context) error
	RestoreUser(ctx context.Context) error
	FetchFullProfile(ctx context.Context)
	UpdateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	FetchTeamStatus(ctx context.Context) bool
	FetchPendingRequest(ctx context.Context) bool
	RefreshTeamAndRequestStatus(ctx context.Context)
	Logout(ctx context.Context)
	RequestPasswordReset(ctx context.Context, email string) domain.Result
	ResetPassword(ctx context.Context, uid, token, newPassword, confirmPassword string) domain.Result

	Token() string
	User() *domain.User
	IsLoggingIn() bool
	Snapshot() domain.Session
	// PersistedToken reads the token from the persistence collaborator,
	// which may be ahead of the in-memory session after a restart.
	PersistedToken(ctx context.Context) string
}

// NavigationGuard decides whether a navigation attempt may proceed.
type NavigationGuard interface {
	Evaluate(ctx context.Context, nav domain.Navigation) domain.Decision
}
