package task

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
	guarded.GET("/patients/:id/tasks", h.ListTasks, requireAccess)

	write := session.RequireRole(identity.RoleCaregiver, identity.RoleAdmin)
	guarded.POST("/patients/:id/tasks", h.CreateTask, requireAccess, write)
	guarded.PUT("/patients/:id/tasks/:taskId/status", h.UpdateStatus, requireAccess, write)
	guarded.DELETE("/patients/:id/tasks/:taskId", h.DeleteTask, requireAccess,
		session.RequireRole(identity.RoleAdmin))
}

func (h *Handler) ListTasks(c echo.Context) error {
	items, err := h.svc.ListTasks(c.Request().Context(), patient.PatientIDParam(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items, "total": len(items)})
}

func (h *Handler) CreateTask(c echo.Context) error {
	var t Task
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.PatientID = patient.PatientIDParam(c)
	if profile := session.ProfileFromContext(c.Request().Context()); profile != nil {
		t.CreatedBy = &profile.ID
	}
	if err := h.svc.CreateTask(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	if err := h.svc.DeleteTask(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}
