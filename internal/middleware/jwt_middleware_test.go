package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

const secret = "middleware-secret"

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newApp() *fiber.App {
	auth := services.NewAuthService(nil, secret, time.Hour)
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		identity := middleware.IdentityFrom(c)
		return c.JSON(identity)
	}
	app.Get("/private", middleware.AuthRequired(auth), whoami)
	app.Get("/public", middleware.OptionalAuth(auth), whoami)
	app.Get("/admin", middleware.AuthRequired(auth), middleware.AdminRequired(), whoami)
	return app
}

func get(t *testing.T, app *fiber.App, path, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	app := newApp()
	valid := token(t, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/private", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/private", "Token "+valid))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/private", "Bearer garbage"))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/private", "Bearer "+token(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})))
	assert.Equal(t, http.StatusOK, get(t, app, "/private", "Bearer "+valid))
}

func TestOptionalAuth(t *testing.T) {
	app := newApp()
	assert.Equal(t, http.StatusOK, get(t, app, "/public", ""))
	assert.Equal(t, http.StatusOK, get(t, app, "/public", "Bearer garbage"))
}

func TestAdminRequired(t *testing.T) {
	app := newApp()
	customer := token(t, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	admin := token(t, jwt.MapClaims{"user_id": "u2", "is_superuser": true, "exp": time.Now().Add(time.Hour).Unix()})

	assert.Equal(t, http.StatusForbidden, get(t, app, "/admin", "Bearer "+customer))
	assert.Equal(t, http.StatusOK, get(t, app, "/admin", "Bearer "+admin))
}

func TestIdentityFromAnonymous(t *testing.T) {
	app := fiber.New()
	var got models.Identity
	app.Get("/", func(c *fiber.Ctx) error {
		got = middleware.IdentityFrom(c)
		return nil
	})
	get(t, app, "/", "")
	assert.Equal(t, models.Identity{}, got)
}
