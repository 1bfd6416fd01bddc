package service

import (
	"context"
	"sync"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// API stub
// ---------------------------------------------------------------------------

type stubAPI struct {
	mu    sync.Mutex
	calls []string

	registerFn       func(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.LoginResponse, error)
	meFn             func(ctx context.Context, token string) (*domain.User, error)
	logoutFn         func(ctx context.Context, token string) error
	getProfileFn     func(ctx context.Context, token string) (domain.Profile, error)
	updateProfileFn  func(ctx context.Context, token string, p domain.Profile) (domain.Profile, error)
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(ctx context.Context, uid, token string, req ports.ResetPasswordRequest) error
	myTeamFn         func(ctx context.Context, token string) (domain.TeamMembership, error)
	myJoinRequestFn  func(ctx context.Context, token string) (*domain.JoinRequest, error)
}

func (a *stubAPI) record(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, name)
}

func (a *stubAPI) count(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (a *stubAPI) callLog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *stubAPI) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error) {
	a.record("register")
	if a.registerFn == nil {
		return &ports.RegisterResponse{Message: "User registered successfully."}, nil
	}
	return a.registerFn(ctx, req)
}

func (a *stubAPI) Login(ctx context.Context, email, password string) (*ports.LoginResponse, error) {
	a.record("login")
	return a.loginFn(ctx, email, password)
}

func (a *stubAPI) Me(ctx context.Context, token string) (*domain.User, error) {
	a.record("me")
	return a.meFn(ctx, token)
}

func (a *stubAPI) Logout(ctx context.Context, token string) error {
	a.record("logout")
	if a.logoutFn == nil {
		return nil
	}
	return a.logoutFn(ctx, token)
}

func (a *stubAPI) GetProfile(ctx context.Context, token string) (domain.Profile, error) {
	a.record("get_profile")
	if a.getProfileFn == nil {
		return domain.Profile{"bio": "hello"}, nil
	}
	return a.getProfileFn(ctx, token)
}

func (a *stubAPI) UpdateProfile(ctx context.Context, token string, p domain.Profile) (domain.Profile, error) {
	a.record("update_profile")
	return a.updateProfileFn(ctx, token, p)
}

func (a *stubAPI) ForgotPassword(ctx context.Context, email string) error {
	a.record("forgot_password")
	return a.forgotPasswordFn(ctx, email)
}

func (a *stubAPI) ResetPassword(ctx context.Context, uid, token string, req ports.ResetPasswordRequest) error {
	a.record("reset_password")
	return a.resetPasswordFn(ctx, uid, token, req)
}

func (a *stubAPI) MyTeam(ctx context.Context, token string) (domain.TeamMembership, error) {
	a.record("my_team")
	return a.myTeamFn(ctx, token)
}

func (a *stubAPI) MyJoinRequest(ctx context.Context, token string) (*domain.JoinRequest, error) {
	a.record("my_join_request")
	return a.myJoinRequestFn(ctx, token)
}

// ---------------------------------------------------------------------------
// Store and navigator stubs
// ---------------------------------------------------------------------------

type stubStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newStubStore(seed map[string]string) *stubStore {
	data := make(map[string]string, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &stubStore{data: data}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (s *stubStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubStore) has(key string) bool {
	_, err := s.Get(context.Background(), key)
	return err == nil
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func completeUser() *domain.User {
	return &domain.User{ID: 7, Email: "a@b.com", Role: domain.RoleStudent, IsProfileCompleted: true}
}

func meReturning(u *domain.User) func(context.Context, string) (*domain.User, error) {
	return func(context.Context, string) (*domain.User, error) {
		clone := *u
		return &clone, nil
	}
}

// meHonouringContext behaves like the HTTP client: a done context fails the
// call as a transport error before any response is read.
func meHonouringContext(u *domain.User) func(context.Context, string) (*domain.User, error) {
	return func(ctx context.Context, _ string) (*domain.User, error) {
		if err := ctx.Err(); err != nil {
			return nil, &domain.RemoteError{Err: err}
		}
		clone := *u
		return &clone, nil
	}
}

func loginReturning(access string) func(context.Context, string, string) (*ports.LoginResponse, error) {
	return func(context.Context, string, string) (*ports.LoginResponse, error) {
		return &ports.LoginResponse{Access: access, Refresh: "refresh-" + access}, nil
	}
}
