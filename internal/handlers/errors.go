package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/session"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto status codes. Anything unrecognised
// is treated as a store failure and only fallback reaches the client.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Validation failed", Fields: verr.Fields,
		})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Email already in use",
		})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized: invalid or missing session",
		})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	case errors.Is(err, services.ErrMealNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Meal not found",
		})
	}

	attrs := []any{
		"method", c.Method(),
		"path", c.Path(),
		"action", fallback,
		"error", err.Error(),
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		attrs = append(attrs, "request_id", rid)
	}
	if userID, uerr := session.GetUserID(c); uerr == nil {
		attrs = append(attrs, "user_id", userID.String())
	}
	slog.Error("request failed", attrs...)

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

// invalidBody answers a body that failed to decode, naming the field when the
// decoder knows which one it was.
func invalidBody(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Error: true, Message: "Invalid request body"}

	var ferr *dto.FieldError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &ferr):
		resp.Fields = map[string]string{ferr.Field: ferr.Reason}
	case errors.As(err, &terr) && terr.Field != "":
		resp.Fields = map[string]string{terr.Field: "must be of type " + terr.Type.String()}
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
