package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/pkg/pagination"
)

// Handler serves the profile directory backing the admin access screens,
// where a patient is linked to the customer or caregiver picked from this
// list.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the directory. requireAdmin is injected by the
// caller because the session package already depends on this one.
func (h *Handler) RegisterRoutes(guarded *echo.Group, requireAdmin echo.MiddlewareFunc) {
	guarded.GET("/profiles", h.ListProfiles, requireAdmin)
	guarded.GET("/profiles/:id", h.GetProfile, requireAdmin)
}

func (h *Handler) ListProfiles(c echo.Context) error {
	params := pagination.FromContext(c)
	items, total, err := h.svc.ListProfiles(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

func (h *Handler) GetProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	p, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, p)
}
