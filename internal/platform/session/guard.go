package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/domain/identity"
)

// CookieName carries the session token for browser clients. API clients
// send the token as a bearer Authorization header instead.
const CookieName = "cc_session"

// Guard resolves the caller's session before any protected handler runs.
// A request with no live session never reaches the handler: browser
// requests are redirected to the sign-in page, API requests get 401. A
// store failure is a 503, never a redirect, so an outage does not bounce
// signed-in users to the login screen.
func Guard(provider Provider, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return denyUnauthenticated(c, loginPath)
			}

			s, err := provider.Current(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, ErrNoSession) {
					return denyUnauthenticated(c, loginPath)
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session service unavailable")
			}

			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), s)))
			return next(c)
		}
	}
}

// RequireRole gates a route group to specific roles. It must run after the
// guard. An unknown or missing role is always refused.
func RequireRole(roles ...identity.Role) echo.MiddlewareFunc {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile := ProfileFromContext(c.Request().Context())
			if profile == nil || !profile.Role.Valid() {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			if _, ok := allowed[profile.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// denyUnauthenticated redirects browsers to sign-in and returns 401 to API
// clients. 303 forces the browser to GET the sign-in page regardless of the
// original method.
func denyUnauthenticated(c echo.Context, loginPath string) error {
	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, loginPath)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
}

func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), "text/html")
}
