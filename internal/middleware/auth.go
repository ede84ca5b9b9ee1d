package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionResolver turns an opaque session token into its owner.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// SessionRequired verifies the bearer JWT, resolves the session it carries and
// stores the owner on the request. Any failure ends the request with 401
// before the handler runs.
func SessionRequired(secret []byte, transport session.Transport, sessions SessionResolver) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: secret},
		ContextKey: session.TokenKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			sid, err := transport.Extract(c)
			if err != nil {
				return unauthorized(c)
			}

			userID, err := sessions.Resolve(c.UserContext(), sid)
			if err != nil {
				if errors.Is(err, services.ErrUnauthenticated) {
					return unauthorized(c)
				}
				slog.Error("session resolution failed", "path", c.Path(), "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
					Error: true, Message: "Internal server error",
				})
			}

			session.SetOwner(c, userID, sid)
			return c.Next()
		},
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or missing session",
	})
}
