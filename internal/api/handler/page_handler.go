package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

// PageHandler renders the portal's views. Access control is done by the
// Guard middleware before Show runs.
type PageHandler struct {
	session ports.SessionService
}

func NewPageHandler(session ports.SessionService) *PageHandler {
	return &PageHandler{session: session}
}

// Show returns the handler for route.
func (h *PageHandler) Show(route domain.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, pageResponse{
			View:    route.Name,
			Path:    c.Request().URL.Path,
			Rule:    ctxDecision(c).Rule,
			Session: viewOf(h.session.Snapshot()),
		})
	}
}
