package security

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeaders(t *testing.T, cfg HeadersConfig) *httptest.ResponseRecorder {
	t.Helper()
	app := fiber.New()
	app.Use(HeadersMiddleware(cfg))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	for k, v := range resp.Header {
		rec.Header()[k] = v
	}
	return rec
}

func TestHeadersForJSONAPI(t *testing.T) {
	rec := testHeaders(t, HeadersConfig{})

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t,
		"default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
		rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestHeadersDevelopmentSkipsHSTS(t *testing.T) {
	rec := testHeaders(t, HeadersConfig{IsDevelopment: true})
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestHeadersAllowedOriginsInConnectSrc(t *testing.T) {
	rec := testHeaders(t, HeadersConfig{AllowedOrigins: []string{"https://ui.internal"}})
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"),
		"connect-src 'self' https://ui.internal")
}
