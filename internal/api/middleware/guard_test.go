package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/diplomatch/portal/internal/core/domain"
)

type stubGuard struct {
	decision domain.Decision
	seen     domain.Navigation
}

func (g *stubGuard) Evaluate(_ context.Context, nav domain.Navigation) domain.Decision {
	g.seen = nav
	return g.decision
}

func TestGuard_Allowed(t *testing.T) {
	e := echo.New()
	g := &stubGuard{decision: domain.Allow("allow")}
	route := domain.Route{Path: "/students/:id", Name: "StudentPublicProfile", RequiresAuth: true}

	req := httptest.NewRequest(http.MethodGet, "/students/12", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Guard(g, route)(func(c echo.Context) error {
		called = true
		d, ok := c.Get(DecisionKey).(domain.Decision)
		if !ok || d.Rule != "allow" {
			t.Fatalf("decision not stored in context: %+v", c.Get(DecisionKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if g.seen.Path != "/students/12" || g.seen.Route.Name != "StudentPublicProfile" {
		t.Fatalf("unexpected navigation %+v", g.seen)
	}
}

func TestGuard_Redirected(t *testing.T) {
	e := echo.New()
	g := &stubGuard{decision: domain.RedirectTo(domain.PathLogin, "token-required")}

	req := httptest.NewRequest(http.MethodGet, domain.PathDashboard, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Guard(g, domain.Route{Path: domain.PathDashboard, RequiresAuth: true})(func(c echo.Context) error {
		t.Fatalf("next must not run on redirect")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != domain.PathLogin {
		t.Fatalf("expected Location %s, got %q", domain.PathLogin, loc)
	}
}
