package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
	"github.com/diplomatch/portal/internal/pkg/metrics"
)

const restoreKey = "restore"

// SessionService owns the token, the cached user and the derived team state
// of the running client. All fields are guarded by mu; remote calls are made
// without holding it.
type SessionService struct {
	api       ports.APIClient
	store     ports.KeyValueStore
	nav       ports.Navigator
	inspector ports.TokenInspector
	log       zerolog.Logger

	mu    sync.RWMutex
	state domain.Session

	restores singleflight.Group
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService builds the session and seeds it with any persisted token.
// nav and inspector may be nil.
func NewSessionService(
	ctx context.Context,
	api ports.APIClient,
	store ports.KeyValueStore,
	nav ports.Navigator,
	inspector ports.TokenInspector,
	log zerolog.Logger,
) *SessionService {
	if nav == nil {
		nav = discardNavigator{}
	}
	s := &SessionService{
		api:       api,
		store:     store,
		nav:       nav,
		inspector: inspector,
		log:       log,
	}
	if token := s.PersistedToken(ctx); token != "" {
		s.setToken(token)
	}
	return s
}

// Register submits the registration form. When the API signs the user in
// straight away the returned token is adopted and the user fetched.
func (s *SessionService) Register(ctx context.Context, in domain.RegisterInput) error {
	resp, err := s.api.Register(ctx, ports.RegisterRequest{
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		Role:            in.Role,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("email", in.Email).Msg("registration rejected")
		return &domain.RegistrationError{Message: remoteMessage(err, "Registration failed"), Err: err}
	}

	if resp.Token != "" {
		s.adoptToken(ctx, resp.Token)
		if err := s.FetchUser(ctx); err != nil {
			// The account exists; FetchUser has already ended the session.
			s.log.Warn().Err(err).Str("email", in.Email).Msg("registered but could not load the user")
		}
	}
	return nil
}

// Login exchanges credentials for a token, then loads the user and the full
// profile in that order. On any failure the token is discarded and a
// *domain.LoginError is returned.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	if s.state.IsLoggingIn {
		s.mu.Unlock()
		metrics.LoginAttemptsTotal.WithLabelValues("in_progress").Inc()
		return &domain.LoginError{Message: "Login already in progress", Err: domain.ErrLoginInProgress}
	}
	s.state.IsLoggingIn = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.IsLoggingIn = false
		s.mu.Unlock()
	}()

	if err := s.login(ctx, email, password); err != nil {
		s.discardToken(ctx)

		lerr := toLoginError(err)
		outcome := "failure"
		if lerr.Blocked {
			outcome = "blocked"
		}
		metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
		s.log.Warn().Err(err).Str("email", email).Bool("blocked", lerr.Blocked).Msg("login failed")
		return lerr
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("email", email).Msg("logged in")
	return nil
}

func (s *SessionService) login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if resp.Access == "" {
		return domain.ErrAccessTokenMissing
	}

	s.adoptToken(ctx, resp.Access)

	user, err := s.api.Me(ctx, resp.Access)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if !s.setUser(resp.Access, user) {
		return fmt.Errorf("fetch user: %w", domain.ErrNoToken)
	}

	s.FetchFullProfile(ctx)
	return nil
}

// FetchUser loads the current user with the held token. A failure of any
// kind invalidates the session.
func (s *SessionService) FetchUser(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		s.log.Warn().Msg("fetch user: no token held")
		return nil
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			// The caller went away; the token was never rejected.
			return fmt.Errorf("fetch user: %w", err)
		}
		s.log.Error().Err(err).Msg("fetch user failed, logging out")
		s.Logout(ctx)
		return fmt.Errorf("fetch user: %w", err)
	}
	if !s.setUser(token, user) {
		return nil
	}

	if !user.IsProfileCompleted {
		s.nav.Navigate(ctx, domain.PathProfile)
	}
	return nil
}

// RestoreUser revalidates a persisted token after a restart. Concurrent
// callers share a single in-flight restoration, which runs to completion even
// when the caller that started it is cancelled.
func (s *SessionService) RestoreUser(ctx context.Context) error {
	_, err, _ := s.restores.Do(restoreKey, func() (any, error) {
		return nil, s.restore(context.WithoutCancel(ctx))
	})
	return err
}

func (s *SessionService) restore(ctx context.Context) error {
	if s.User() != nil {
		metrics.RestoresTotal.WithLabelValues("already_loaded").Inc()
		return nil
	}

	token := s.PersistedToken(ctx)
	if token == "" {
		metrics.RestoresTotal.WithLabelValues("no_token").Inc()
		return nil
	}

	s.setToken(token)

	user, err := s.api.Me(ctx, token)
	if err != nil {
		metrics.RestoresTotal.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).Msg("session expired, logging out")
		s.Logout(ctx)
		return fmt.Errorf("restore session: %w", err)
	}
	if !s.setUser(token, user) {
		return nil
	}

	s.FetchFullProfile(ctx)
	metrics.RestoresTotal.WithLabelValues("restored").Inc()
	s.log.Info().Int64("user_id", user.ID).Msg("session restored")
	return nil
}

// FetchFullProfile loads the extended profile. Failures are logged only.
func (s *SessionService) FetchFullProfile(ctx context.Context) {
	token := s.Token()
	if token == "" {
		return
	}

	profile, err := s.api.GetProfile(ctx, token)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch full profile")
		return
	}

	s.mu.Lock()
	if s.state.Token == token {
		s.state.FullProfile = profile
	}
	s.mu.Unlock()
}

// UpdateProfile saves the profile, marks it complete on the cached user and
// navigates to the dashboard.
func (s *SessionService) UpdateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	token := s.Token()
	if token == "" {
		return nil, &domain.ProfileUpdateError{Err: domain.ErrNoToken}
	}

	saved, err := s.api.UpdateProfile(ctx, token, profile)
	if err != nil {
		s.log.Error().Err(err).Msg("profile update failed")
		return nil, &domain.ProfileUpdateError{Err: err}
	}

	var snapshot *domain.User
	s.mu.Lock()
	if s.state.Token == token && s.state.User != nil {
		s.state.User.IsProfileCompleted = true
		u := *s.state.User
		snapshot = &u
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.persistUser(ctx, snapshot)
	}

	s.nav.Navigate(ctx, domain.PathDashboard)
	return saved, nil
}

// FetchTeamStatus refreshes HasTeam. Any failure yields false.
func (s *SessionService) FetchTeamStatus(ctx context.Context) bool {
	has := false
	if token := s.Token(); token != "" {
		team, err := s.api.MyTeam(ctx, token)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to fetch team")
		} else {
			has = team.Present()
		}
	}

	s.mu.Lock()
	s.state.HasTeam = has
	s.mu.Unlock()
	return has
}

// FetchPendingRequest refreshes HasPendingJoinRequest. Any failure yields
// false.
func (s *SessionService) FetchPendingRequest(ctx context.Context) bool {
	pending := false
	if token := s.Token(); token != "" {
		req, err := s.api.MyJoinRequest(ctx, token)
		if err != nil {
			s.log.Debug().Err(err).Msg("failed to fetch join request")
		} else {
			pending = req != nil && req.Status == domain.JoinRequestPending
		}
	}

	s.mu.Lock()
	s.state.HasPendingJoinRequest = pending
	s.mu.Unlock()
	return pending
}

// RefreshTeamAndRequestStatus refreshes both team flags, one after the other.
func (s *SessionService) RefreshTeamAndRequestStatus(ctx context.Context) {
	s.FetchTeamStatus(ctx)
	s.FetchPendingRequest(ctx)
}

// Logout notifies the API on a best-effort basis, then always clears the
// local session and navigates to the login page.
func (s *SessionService) Logout(ctx context.Context) {
	remote := "skipped"
	if token := s.Token(); token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			remote = "failed"
			s.log.Warn().Err(err).Msg("logout on server failed or already logged out")
		} else {
			remote = "ok"
		}
	}

	s.mu.Lock()
	s.state = domain.Session{IsLoggingIn: s.state.IsLoggingIn}
	s.mu.Unlock()

	s.forget(ctx, domain.TokenKey)
	s.forget(ctx, domain.UserKey)

	metrics.LogoutsTotal.WithLabelValues(remote).Inc()
	s.nav.Navigate(ctx, domain.PathLogin)
}

// RequestPasswordReset asks the API to mail a reset link.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) domain.Result {
	if err := s.api.ForgotPassword(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("password reset request failed")
		return domain.Result{Message: remoteMessage(err, "Reset failed.")}
	}
	return domain.Result{Success: true, Message: "Reset link sent to your email."}
}

// ResetPassword confirms a reset with the uid/token pair from the mailed link.
func (s *SessionService) ResetPassword(ctx context.Context, uid, token, newPassword, confirmPassword string) domain.Result {
	err := s.api.ResetPassword(ctx, uid, token, ports.ResetPasswordRequest{
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("password reset failed")
		return domain.Result{Message: remoteMessage(err, "Reset failed.")}
	}
	return domain.Result{Success: true, Message: "Password reset successful."}
}

// ── Read accessors ────────────────────────────────────────────────────────────

func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns a copy of the cached user, or nil.
func (s *SessionService) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *SessionService) FullProfile() domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FullProfile.Clone()
}

func (s *SessionService) HasTeam() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HasTeam
}

func (s *SessionService) HasPendingJoinRequest() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HasPendingJoinRequest
}

func (s *SessionService) IsLoggingIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoggingIn
}

func (s *SessionService) IsAuthenticated() bool {
	return s.Token() != ""
}

// Snapshot returns a deep-enough copy of the whole session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	if s.state.User != nil {
		u := *s.state.User
		snap.User = &u
	}
	if s.state.TokenExpiresAt != nil {
		t := *s.state.TokenExpiresAt
		snap.TokenExpiresAt = &t
	}
	snap.FullProfile = s.state.FullProfile.Clone()
	return snap
}

// PersistedToken reads the token from the persistence collaborator. Read
// errors are logged and treated as no token.
func (s *SessionService) PersistedToken(ctx context.Context) string {
	token, err := s.store.Get(ctx, domain.TokenKey)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.log.Warn().Err(err).Msg("failed to read persisted token")
		}
		return ""
	}
	return token
}

// ── State helpers ─────────────────────────────────────────────────────────────

// adoptToken installs a freshly issued token in memory and persistence.
func (s *SessionService) adoptToken(ctx context.Context, token string) {
	s.setToken(token)
	if err := s.store.Set(ctx, domain.TokenKey, token); err != nil {
		s.log.Error().Err(err).Msg("failed to persist token")
	}
}

func (s *SessionService) setToken(token string) {
	var claims *domain.TokenClaims
	if s.inspector != nil {
		var err error
		if claims, err = s.inspector.Inspect(token); err != nil {
			s.log.Debug().Err(err).Msg("token claims unreadable")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token != token {
		s.state.User = nil
		s.state.FullProfile = nil
	}
	s.state.Token = token
	s.state.TokenExpiresAt = nil
	if claims != nil {
		s.state.TokenExpiresAt = claims.ExpiresAt
	}
}

// setUser stores user only if token is still the held token, so a logout
// racing a fetch can never leave a user without a token.
func (s *SessionService) setUser(token string, user *domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil || s.state.Token == "" || s.state.Token != token {
		return false
	}
	u := *user
	s.state.User = &u
	return true
}

// discardToken drops the token and user after a failed login.
func (s *SessionService) discardToken(ctx context.Context) {
	s.mu.Lock()
	s.state.Token = ""
	s.state.TokenExpiresAt = nil
	s.state.User = nil
	s.state.FullProfile = nil
	s.mu.Unlock()

	s.forget(ctx, domain.TokenKey)
}

func (s *SessionService) persistUser(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode user snapshot")
		return
	}
	if err := s.store.Set(ctx, domain.UserKey, string(raw)); err != nil {
		s.log.Error().Err(err).Msg("failed to persist user snapshot")
	}
}

func (s *SessionService) forget(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to clear persisted value")
	}
}

// toLoginError shapes any login failure into the structure surfaced to the
// caller.
func toLoginError(err error) *domain.LoginError {
	if errors.Is(err, domain.ErrAccessTokenMissing) {
		return &domain.LoginError{Message: "Access token missing", Err: err}
	}

	lerr := &domain.LoginError{Message: remoteMessage(err, "Login failed"), Err: err}
	var re *domain.RemoteError
	if errors.As(err, &re) {
		lerr.Blocked = re.Blocked
		lerr.BlockedUntil = re.BlockedUntil
	}
	return lerr
}

// remoteMessage returns the server-supplied message of err, or fallback.
func remoteMessage(err error, fallback string) string {
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

type discardNavigator struct{}

func (discardNavigator) Navigate(context.Context, string) {}
