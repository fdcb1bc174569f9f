package i18n

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LanguageCookie carries the visitor's chosen language between requests.
const LanguageCookie = "cc_lang"

// Handler serves translation bundles over HTTP.
type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes mounts the bundle endpoint on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/i18n/:lang", h.Bundle)
}

// Bundle returns the flattened translation map for a language and pins the
// choice in a cookie so subsequent page loads start in the same language.
// The catalog's current language follows the last selection, so strings the
// server emits itself (confirmation messages) match what the visitor last
// chose. An unknown language is served via the default-language fallback
// rather than rejected.
func (h *Handler) Bundle(c echo.Context) error {
	lang := c.Param("lang")
	if lang == "" {
		lang = h.catalog.DefaultLanguage()
	}
	h.catalog.SetLanguage(lang)

	c.SetCookie(&http.Cookie{
		Name:     LanguageCookie,
		Value:    lang,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"language":     lang,
		"translations": h.catalog.Flatten(lang),
	})
}
