package document

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/domain/identity"
	"github.com/careconnect/careconnect/internal/domain/patient"
	"github.com/careconnect/careconnect/internal/platform/blobstore"
	"github.com/careconnect/careconnect/internal/platform/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the patient-scoped document routes on the guarded
// group and the token-checked download on the public group. The download
// endpoint is public on purpose: its token is the credential, so a browser
// can follow the link without a session header.
func (h *Handler) RegisterRoutes(public, guarded *echo.Group, requireAccess echo.MiddlewareFunc) {
	guarded.GET("/patients/:id/documents", h.ListDocuments, requireAccess)
	guarded.GET("/patients/:id/documents/:docId/url", h.SignedURL, requireAccess)
	guarded.POST("/patients/:id/documents", h.Upload, requireAccess,
		session.RequireRole(identity.RoleAdmin))
	guarded.DELETE("/patients/:id/documents/:docId", h.Delete, requireAccess,
		session.RequireRole(identity.RoleAdmin))

	public.GET("/documents/download", h.Download)
}

func (h *Handler) ListDocuments(c echo.Context) error {
	items, err := h.svc.ListByPatient(c.Request().Context(), patient.PatientIDParam(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items, "total": len(items)})
}

func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	profile := session.ProfileFromContext(c.Request().Context())
	d, err := h.svc.Upload(c.Request().Context(),
		patient.PatientIDParam(c), profile.ID,
		c.FormValue("label"), file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrFileTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, blobstore.ErrMissingFileName):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
		}
	}
	return c.JSON(http.StatusCreated, d)
}

// SignedURL verifies the document belongs to the patient in the route
// before minting a token, so a token for one patient's document cannot be
// requested through another patient the caller can see.
func (h *Handler) SignedURL(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("docId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}

	d, err := h.svc.GetDocument(c.Request().Context(), id)
	if err != nil || d.PatientID == nil || *d.PatientID != patient.PatientIDParam(c) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}

	token, expiresAt, err := h.svc.SignedURL(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign url")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"url":        fmt.Sprintf("/api/v1/documents/download?token=%s", token),
		"expires_at": expiresAt,
	})
}

func (h *Handler) Download(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	rc, meta, err := h.svc.OpenByToken(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, meta.FileName))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("docId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}
