package handlers

import (
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/session"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users     *services.UserService
	transport session.Transport
}

func NewUserHandler(users *services.UserService, transport session.Transport) *UserHandler {
	return &UserHandler{users: users, transport: transport}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	user, bearer, err := h.users.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "Failed to register user")
	}
	h.transport.Attach(c, bearer)

	return c.Status(fiber.StatusCreated).JSON(authResponse("User registered successfully", user, bearer))
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	user, bearer, err := h.users.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "Failed to login")
	}
	h.transport.Attach(c, bearer)

	return c.JSON(authResponse("Login successful", user, bearer))
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.users.CurrentUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}

	return c.JSON(authResponse("Authenticated user", user, session.RawToken(c)))
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	if err := h.users.Logout(c.UserContext(), session.GetSessionID(c)); err != nil {
		return respondError(c, err, "Failed to logout")
	}

	h.transport.Clear(c)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func authResponse(message string, user *models.User, bearer string) dto.AuthResponse {
	return dto.AuthResponse{
		Message: message,
		User: dto.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		SessionToken: bearer,
	}
}
