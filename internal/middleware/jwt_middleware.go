package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/services"
)

const identityKey = "identity"

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and stores the caller's identity for later handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		identity, err := identityFromHeader(authService, authHeader)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return unauthorized(c, apperror.MessageOf(err))
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth stores the caller's identity when a valid bearer token is
// present and lets anonymous requests through otherwise.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get("Authorization"); authHeader != "" {
			if identity, err := identityFromHeader(authService, authHeader); err == nil {
				c.Locals(identityKey, identity)
			}
		}
		return c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFrom(c).IsSuperuser {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "admin privileges required",
				"error":   apperror.KindAuthorization,
			})
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired or OptionalAuth.
// Anonymous requests get the zero Identity.
func IdentityFrom(c *fiber.Ctx) models.Identity {
	identity, _ := c.Locals(identityKey).(models.Identity)
	return identity
}

func identityFromHeader(authService *services.AuthService, authHeader string) (models.Identity, error) {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return models.Identity{}, apperror.New(apperror.KindUnauthenticated, "Authorization header format must be 'Bearer <token>'")
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		return models.Identity{}, apperror.Wrap(apperror.KindUnauthenticated, err, "Invalid or expired token")
	}
	return services.IdentityFromClaims(claims)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"error":   apperror.KindUnauthenticated,
	})
}
