package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/diplomatch/portal/internal/api/handler"
	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
	"github.com/diplomatch/portal/internal/core/service"
	"github.com/diplomatch/portal/internal/infrastructure/store"
)

// fakeAPI accepts a single account, password "correct-horse".
type fakeAPI struct {
	user domain.User
}

func (f *fakeAPI) Register(context.Context, ports.RegisterRequest) (*ports.RegisterResponse, error) {
	return &ports.RegisterResponse{Message: "created"}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*ports.LoginResponse, error) {
	if email != f.user.Email || password != "correct-horse" {
		return nil, &domain.RemoteError{StatusCode: http.StatusUnauthorized, Message: "No active account found"}
	}
	return &ports.LoginResponse{Access: "access-token", Refresh: "refresh-token"}, nil
}

func (f *fakeAPI) Me(_ context.Context, token string) (*domain.User, error) {
	if token != "access-token" {
		return nil, &domain.RemoteError{StatusCode: http.StatusUnauthorized}
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) Logout(context.Context, string) error { return nil }

func (f *fakeAPI) GetProfile(context.Context, string) (domain.Profile, error) {
	return domain.Profile{"bio": "thesis on graphs"}, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, _ string, p domain.Profile) (domain.Profile, error) {
	return p, nil
}

func (f *fakeAPI) ForgotPassword(context.Context, string) error { return nil }

func (f *fakeAPI) ResetPassword(context.Context, string, string, ports.ResetPasswordRequest) error {
	return nil
}

func (f *fakeAPI) MyTeam(context.Context, string) (domain.TeamMembership, error) { return nil, nil }

func (f *fakeAPI) MyJoinRequest(context.Context, string) (*domain.JoinRequest, error) {
	return nil, nil
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testApp struct {
	e     *echo.Echo
	store *store.Memory
}

func newTestApp(t *testing.T, checks map[string]ports.Pinger) testApp {
	t.Helper()
	log := zerolog.Nop()
	kv := store.NewMemory()
	nav := handler.NewPendingNavigator()
	api := &fakeAPI{user: domain.User{ID: 3, Email: "ana@uni.edu", Role: domain.RoleStudent, IsProfileCompleted: true}}

	session := service.NewSessionService(context.Background(), api, kv, nav, nil, log)
	guard := service.NewGuard(session, log)

	if checks == nil {
		checks = map[string]ports.Pinger{"store": kv}
	}
	e := NewRouter(Dependencies{
		Session:   session,
		Guard:     guard,
		Navigator: nav,
		Checks:    checks,
		Log:       log,
	})
	return testApp{e: e, store: kv}
}

func (a testApp) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ProtectedPageRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != domain.PathLogin {
		t.Errorf("expected redirect to %s, got %q", domain.PathLogin, loc)
	}
}

func TestRouter_PublicPageIsServed(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/login", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["view"] != "Login" {
		t.Errorf("expected Login view, got %v", body["view"])
	}
}

func TestRouter_LoginThenDashboard(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodPost, "/session/login", `{"email":"ana@uni.edu","password":"correct-horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "access-token") {
		t.Error("session view must not expose the token")
	}

	tok, err := app.store.Get(context.Background(), domain.TokenKey)
	if err != nil || tok != "access-token" {
		t.Fatalf("expected persisted token, got %q (%v)", tok, err)
	}

	rec = app.do(http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"view":"Dashboard"`) {
		t.Errorf("unexpected page body: %s", rec.Body.String())
	}

	rec = app.do(http.MethodPost, "/session/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"navigate_to":"/login"`) {
		t.Errorf("expected navigation to /login, got %s", rec.Body.String())
	}

	rec = app.do(http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303 after logout, got %d", rec.Code)
	}
}

func TestRouter_LoginRejected(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodPost, "/session/login", `{"email":"ana@uni.edu","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No active account found") {
		t.Errorf("expected remote message, got %s", rec.Body.String())
	}
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t, map[string]ports.Pinger{
		"store": pingerFunc(func(context.Context) error { return nil }),
		"api":   pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	if rec := app.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("liveness: expected 200, got %d", rec.Code)
	}

	rec := app.do(http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness: expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("expected failing dependency in body, got %s", rec.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(http.MethodGet, "/health", "")

	rec := app.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "portal_http_requests_total") {
		t.Error("expected http request metrics")
	}
}

func TestRouter_SwaggerDoc(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/session/login") {
		t.Error("expected the session routes in the document")
	}
}
