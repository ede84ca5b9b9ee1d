package session

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKey is the Locals key the bearer middleware stores the verified JWT under.
const TokenKey = "session_token"

var ErrNoToken = errors.New("no session token in request")

// Transport moves the opaque session token between client and server.
// Everything below it works with the raw token only.
type Transport interface {
	Extract(c *fiber.Ctx) (string, error)
	Seal(userID uuid.UUID, token string) (string, error)
	Attach(c *fiber.Ctx, bearer string)
	Clear(c *fiber.Ctx)
}

// BearerTransport wraps the session token in a signed JWT carried in the
// Authorization header.
type BearerTransport struct {
	secret []byte
	ttl    time.Duration
}

func NewBearerTransport(secret string, ttl time.Duration) *BearerTransport {
	return &BearerTransport{secret: []byte(secret), ttl: ttl}
}

func (t *BearerTransport) Secret() []byte {
	return t.secret
}

// Extract returns the session token from the JWT already verified by the
// bearer middleware, or verifies the Authorization header itself.
func (t *BearerTransport) Extract(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok || token == nil {
		raw := bearer(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return "", ErrNoToken
		}

		var err error
		token, err = jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return "", err
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", errors.New("missing sid claim")
	}
	return sid, nil
}

// Seal signs token for userID. The result is what clients send back as
// their bearer value.
func (t *BearerTransport) Seal(userID uuid.UUID, token string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": token,
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *BearerTransport) Attach(c *fiber.Ctx, bearer string) {
	c.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
}

func (t *BearerTransport) Clear(c *fiber.Ctx) {
	c.Response().Header.Del(fiber.HeaderAuthorization)
	c.Set(fiber.HeaderCacheControl, "no-store")
}

func bearer(header string) string {
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
