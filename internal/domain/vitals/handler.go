package vitals

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/domain/identity"
	"github.com/careconnect/careconnect/internal/domain/patient"
	"github.com/careconnect/careconnect/internal/platform/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts vitals under the patient detail routes. requireAccess
// is the per-patient visibility re-check; reads are open to anyone who can
// see the patient, writes are for caregivers and admins, and removing a
// mis-entered reading is admin-only.
func (h *Handler) RegisterRoutes(guarded *echo.Group, requireAccess echo.MiddlewareFunc) {
	guarded.GET("/patients/:id/vitals", h.ListVitals, requireAccess)
	guarded.POST("/patients/:id/vitals", h.RecordVital, requireAccess,
		session.RequireRole(identity.RoleCaregiver, identity.RoleAdmin))
	guarded.DELETE("/patients/:id/vitals/:vitalId", h.DeleteVital, requireAccess,
		session.RequireRole(identity.RoleAdmin))
}

func (h *Handler) ListVitals(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	items, err := h.svc.ListVitals(c.Request().Context(), patient.PatientIDParam(c), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items, "total": len(items)})
}

func (h *Handler) RecordVital(c echo.Context) error {
	var v Vital
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.PatientID = patient.PatientIDParam(c)
	if profile := session.ProfileFromContext(c.Request().Context()); profile != nil {
		v.RecordedBy = &profile.ID
	}
	if err := h.svc.RecordVital(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) DeleteVital(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("vitalId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vital id")
	}
	if err := h.svc.DeleteVital(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}
