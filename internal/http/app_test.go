package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"gasper/internal/config"
	"gasper/internal/http/handlers"
	"gasper/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		DBDSN:     ":memory:",
		BookingTZ: time.UTC,
		Email: config.EmailConfig{
			Provider:      "resend",
			From:          "Gasper <noreply@gasper.app>",
			FallbackEmail: "hello@gasper.app",
		},
	}
}

// newTestApp builds the real route table behind the same middleware main uses.
// tweak runs before the routes are mounted.
func newTestApp(t *testing.T, cfg config.Config, tweak func(*handlers.Deps)) (*fiber.App, *sqlx.DB) {
	t.Helper()
	return newTestAppCtx(t, context.Background(), cfg, tweak)
}

// newTestAppCtx is newTestApp with the server context supplied, as main does.
func newTestAppCtx(t *testing.T, ctx context.Context, cfg config.Config, tweak func(*handlers.Deps)) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New(fiber.Config{Views: handlers.Views("../../web/templates")})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(handlers.RequestContext(ctx, cfg.RequestTimeout))
	app.Use(handlers.Session())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		ContextKey:     "csrf",
		Next:           func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") },
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, cfg, nil, nil)
	if tweak != nil {
		tweak(deps)
	}
	deps.Mount(app)
	app.Use(handlers.NotFound)
	return app, db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// session holds the cookies a browser would replay.
type session struct {
	t    *testing.T
	app  *fiber.App
	sid  string
	csrf string
}

func newSession(t *testing.T, app *fiber.App) *session {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	if err != nil {
		t.Fatal(err)
	}
	s := &session{t: t, app: app, sid: extractCookie(resp, "sid"), csrf: extractCookie(resp, "csrf_")}
	if s.sid == "" || s.csrf == "" {
		t.Fatalf("missing cookies sid=%q csrf=%q", s.sid, s.csrf)
	}
	return s
}

func (s *session) do(req *http.Request) *http.Response {
	s.t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: s.sid})
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: s.csrf})
	resp, err := s.app.Test(req, 5000)
	if err != nil {
		s.t.Fatal(err)
	}
	return resp
}

func (s *session) get(path string) *http.Response {
	return s.do(httptest.NewRequest("GET", path, nil))
}

func (s *session) form(path, body string) *http.Response {
	req := httptest.NewRequest("POST", path, strings.NewReader("csrf="+s.csrf+"&"+body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *session) json(method, path string, body any) *http.Response {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// openWeekday returns a weekday at least a week out, so it is always bookable.
func openWeekday() string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}
