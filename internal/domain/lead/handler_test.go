package lead

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/platform/i18n"
)

func newTestCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	dir := t.TempDir()
	locales := map[string]string{
		"de": `{"lead": {"customer": {"success": "Vielen Dank für Ihre Anfrage"}, "caregiver": {"success": "Vielen Dank für Ihre Bewerbung"}}}`,
		"sl": `{"lead": {"customer": {"success": "Hvala za povpraševanje"}}}`,
	}
	for lang, content := range locales {
		if err := os.WriteFile(filepath.Join(dir, lang+".json"), []byte(content), 0o644); err != nil {
			t.Fatalf("write locale: %v", err)
		}
	}
	return i18n.NewCatalog(dir, "de")
}

func submitRequest(body string, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSubmit_ConfirmationInDefaultLanguage(t *testing.T) {
	h := NewHandler(NewService(&mockLeadRepo{}), newTestCatalog(t), zerolog.Nop())

	c, rec := submitRequest(`{"type":"customer","name":"Anna Berger","email":"anna@example.com","phone":"+49 30 1234567"}`)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Vielen Dank für Ihre Anfrage") {
		t.Errorf("body = %s, want German confirmation", rec.Body.String())
	}
}

func TestSubmit_ConfirmationFollowsLanguageCookie(t *testing.T) {
	h := NewHandler(NewService(&mockLeadRepo{}), newTestCatalog(t), zerolog.Nop())

	c, rec := submitRequest(
		`{"type":"customer","name":"Vera Novak","email":"vera@example.com","phone":"+386 1 234 5678"}`,
		&http.Cookie{Name: i18n.LanguageCookie, Value: "sl"})
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Hvala za povpraševanje") {
		t.Errorf("body = %s, want Slovenian confirmation", rec.Body.String())
	}
}

func TestListLeads_StoreErrorIs503(t *testing.T) {
	repo := &mockLeadRepo{err: errors.New("connection refused")}
	h := NewHandler(NewService(repo), newTestCatalog(t), zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	rec := httptest.NewRecorder()

	err := h.ListLeads(e.NewContext(req, rec))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("err = %v, want 503", err)
	}
}
