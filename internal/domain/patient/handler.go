package patient

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/domain/identity"
	"github.com/careconnect/careconnect/internal/platform/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts roster and admin routes on the guarded group.
func (h *Handler) RegisterRoutes(guarded *echo.Group) {
	guarded.GET("/patients", h.ListPatients)
	guarded.GET("/patients/:id", h.GetPatient, h.RequireAccess)

	admin := guarded.Group("", session.RequireRole(identity.RoleAdmin))
	admin.POST("/patients", h.CreatePatient)
	admin.PUT("/patients/:id", h.UpdatePatient)
	admin.POST("/patients/:id/access", h.GrantAccess)
	admin.DELETE("/patients/:id/access/:customerId", h.RevokeAccess)
	admin.GET("/patients/:id/assignments", h.ListAssignments)
	admin.POST("/patients/:id/assignments", h.AssignCaregiver)
	admin.PUT("/assignments/:id/end", h.EndAssignment)
}

// RequireAccess re-checks the caller's right to the patient in the :id
// param. Both "patient does not exist" and "patient exists but is not
// yours" produce the same 404 so the roster cannot be probed.
func (h *Handler) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}

		profile := session.ProfileFromContext(c.Request().Context())
		ok, err := h.svc.CanAccess(c.Request().Context(), profile, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
		}
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}

		c.Set("patient_id", id)
		return next(c)
	}
}

// PatientIDParam returns the patient ID placed on the context by
// RequireAccess.
func PatientIDParam(c echo.Context) uuid.UUID {
	id, _ := c.Get("patient_id").(uuid.UUID)
	return id
}

func (h *Handler) ListPatients(c echo.Context) error {
	profile := session.ProfileFromContext(c.Request().Context())
	items, err := h.svc.VisiblePatients(c.Request().Context(), profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items, "total": len(items)})
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), PatientIDParam(c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if profile := session.ProfileFromContext(c.Request().Context()); profile != nil {
		p.CreatedBy = &profile.ID
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

type grantAccessRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
}

func (h *Handler) GrantAccess(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	var req grantAccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CustomerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "customer_id is required")
	}
	if err := h.svc.GrantAccess(c.Request().Context(), req.CustomerID, patientID); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RevokeAccess(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	if err := h.svc.RevokeAccess(c.Request().Context(), customerID, patientID); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAssignments(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	items, err := h.svc.ListAssignments(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items, "total": len(items)})
}

func (h *Handler) AssignCaregiver(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	var a CaregiverAssignment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.PatientID = patientID
	if err := h.svc.AssignCaregiver(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

type endAssignmentRequest struct {
	EndDate time.Time `json:"end_date"`
}

func (h *Handler) EndAssignment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assignment id")
	}
	var req endAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.EndDate.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date is required")
	}
	if err := h.svc.EndAssignment(c.Request().Context(), id, req.EndDate); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}
