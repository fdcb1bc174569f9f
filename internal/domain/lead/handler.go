package lead

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/domain/identity"
	"github.com/careconnect/careconnect/internal/platform/i18n"
	"github.com/careconnect/careconnect/internal/platform/session"
	"github.com/careconnect/careconnect/pkg/pagination"
)

type Handler struct {
	svc     *Service
	catalog *i18n.Catalog
	log     zerolog.Logger
}

func NewHandler(svc *Service, catalog *i18n.Catalog, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, catalog: catalog, log: log}
}

// RegisterRoutes wires the public submission endpoint and the admin-only
// listing. Submission gets its own rate limiter since it is the only
// unauthenticated write in the API.
func (h *Handler) RegisterRoutes(public, guarded *echo.Group) {
	limiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(5))
	public.POST("/leads", h.Submit, limiter)

	guarded.GET("/leads", h.ListLeads, session.RequireRole(identity.RoleAdmin))
}

func (h *Handler) Submit(c echo.Context) error {
	var l Lead
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Submit(c.Request().Context(), &l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.log.Info().
		Str("lead_type", string(l.Type)).
		Str("lead_id", l.ID.String()).
		Msg("lead captured")
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      l.ID,
		"message": h.confirmation(c, l.Type),
	})
}

// confirmation localizes the submission toast. A cc_lang cookie from the
// visitor wins; without one the catalog's current language is used.
func (h *Handler) confirmation(c echo.Context, typ LeadType) string {
	key := "lead." + string(typ) + ".success"
	if ck, err := c.Cookie(i18n.LanguageCookie); err == nil && ck.Value != "" {
		return h.catalog.Resolve(key, ck.Value)
	}
	return h.catalog.T(key)
}

func (h *Handler) ListLeads(c echo.Context) error {
	params := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), params)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}
