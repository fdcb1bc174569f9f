package carelog

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

func (h *Handler) RegisterRoutes(guarded *echo.Group, requireAccess echo.MiddlewareFunc) {
	guarded.GET("/patients/:id/care-logs", h.ListEntries, requireAccess)

	write := session.RequireRole(identity.RoleCaregiver, identity.RoleAdmin)
	guarded.POST("/patients/:id/care-logs", h.RecordEntry, requireAccess, write)
	guarded.PUT("/patients/:id/care-logs/:logId/completed", h.SetCompleted, requireAccess, write)
}

func (h *Handler) ListEntries(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	items, err := h.svc.ListEntries(c.Request().Context(), patient.PatientIDParam(c), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items, "total": len(items)})
}

func (h *Handler) RecordEntry(c echo.Context) error {
	var l CareLog
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l.PatientID = patient.PatientIDParam(c)
	if profile := session.ProfileFromContext(c.Request().Context()); profile != nil {
		l.RecordedBy = &profile.ID
	}
	if err := h.svc.RecordEntry(c.Request().Context(), &l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, l)
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

func (h *Handler) SetCompleted(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("logId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid log id")
	}
	var req setCompletedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetCompleted(c.Request().Context(), id, req.Completed); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}
