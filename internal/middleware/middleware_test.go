package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersAndCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(&config.Config{CORSOrigins: "https://diet.example"}))
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://diet.example")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "https://diet.example", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "Authorization", resp.Header.Get(fiber.HeaderAccessControlExposeHeaders))
}
