package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/diplomatch/portal/internal/api/middleware"
	"github.com/diplomatch/portal/internal/core/domain"
)

// ctxDecision returns the guard decision stored by the Guard middleware. The
// zero Decision means the route was not guarded.
func ctxDecision(c echo.Context) domain.Decision {
	d, _ := c.Get(middleware.DecisionKey).(domain.Decision)
	return d
}
