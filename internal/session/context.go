package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	userIDKey = "user_id"
	sidKey    = "session_id"
)

// SetOwner records the resolved session on the request.
func SetOwner(c *fiber.Ctx, userID uuid.UUID, sid string) {
	c.Locals(userIDKey, userID)
	c.Locals(sidKey, sid)
}

// GetUserID returns the owner resolved by the session middleware.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, errors.New("no resolved session in context")
	}
	return userID, nil
}

func GetSessionID(c *fiber.Ctx) string {
	if sid, ok := c.Locals(sidKey).(string); ok {
		return sid
	}
	return ""
}

// RawToken is the bearer value the client presented.
func RawToken(c *fiber.Ctx) string {
	if token, ok := c.Locals(TokenKey).(*jwt.Token); ok && token != nil {
		return token.Raw
	}
	return bearer(c.Get(fiber.HeaderAuthorization))
}
