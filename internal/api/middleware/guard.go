package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// DecisionKey is the echo context key holding the domain.Decision of an
// allowed navigation.
const DecisionKey = "guard_decision"

// Guard evaluates every request to route against the navigation guard.
// Redirected navigations answer 303 See Other with the target in Location.
func Guard(g ports.NavigationGuard, route domain.Route) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := g.Evaluate(c.Request().Context(), domain.Navigation{
				Path:  c.Request().URL.Path,
				Route: route,
			})
			if decision.Outcome == domain.Redirected {
				return c.Redirect(http.StatusSeeOther, decision.Redirect)
			}

			c.Set(DecisionKey, decision)
			return next(c)
		}
	}
}
