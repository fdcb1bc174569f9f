package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/domain/identity"
)

// Handler exposes sign-in, sign-out, and session introspection.
type Handler struct {
	provider      Provider
	events        *EventsHandler
	secureCookies bool
}

func NewHandler(provider Provider, events *EventsHandler, secureCookies bool) *Handler {
	return &Handler{provider: provider, events: events, secureCookies: secureCookies}
}

// RegisterRoutes mounts sign-in on the public group and everything else on
// the guarded group.
func (h *Handler) RegisterRoutes(public, guarded *echo.Group) {
	public.POST("/auth/login", h.Login)

	guarded.POST("/auth/logout", h.Logout)
	guarded.GET("/session", h.CurrentSession)
	guarded.GET("/me", h.Me)
	guarded.GET("/session/events", h.events.Subscribe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Profile   *identity.Profile `json:"profile"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	s, err := h.provider.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, identity.ErrInvalidCredentials.Error())
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sign-in unavailable")
	}

	h.setSessionCookie(c, s.Token, s.ExpiresAt)
	return c.JSON(http.StatusOK, loginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, Profile: s.Profile})
}

func (h *Handler) Logout(c echo.Context) error {
	s := FromEcho(c)
	if s != nil {
		if err := h.provider.SignOut(c.Request().Context(), s.Token); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "sign-out unavailable")
		}
	}

	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CurrentSession(c echo.Context) error {
	return c.JSON(http.StatusOK, FromEcho(c))
}

func (h *Handler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, ProfileFromContext(c.Request().Context()))
}

func (h *Handler) setSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
