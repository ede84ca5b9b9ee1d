package handlers

import (
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

type MealHandler struct {
	meals *services.MealService
}

func NewMealHandler(meals *services.MealService) *MealHandler {
	return &MealHandler{meals: meals}
}

func (h *MealHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateMealRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	meal, err := h.meals.Create(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err, "Failed to register meal")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MealResponse{
		Message: "Meal registered successfully",
		Meal:    meal,
	})
}

func (h *MealHandler) List(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	meals, err := h.meals.List(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch meals")
	}

	return c.JSON(meals)
}

func (h *MealHandler) Metrics(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	m, err := h.meals.Metrics(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to compute metrics")
	}

	return c.JSON(dto.MealMetricsResponse{Metrics: *m})
}

func (h *MealHandler) Get(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	mealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidMealID(c)
	}

	meal, err := h.meals.Get(c.UserContext(), userID, mealID)
	if err != nil {
		return respondError(c, err, "Failed to fetch meal")
	}

	return c.JSON(meal)
}

func (h *MealHandler) Update(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	mealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidMealID(c)
	}

	var req dto.UpdateMealRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	req.ClearDescription = explicitNull(c.Body(), "description")

	meal, err := h.meals.Update(c.UserContext(), userID, mealID, &req)
	if err != nil {
		return respondError(c, err, "Failed to update meal")
	}

	return c.JSON(dto.MealResponse{
		Message: "Meal updated successfully",
		Meal:    meal,
	})
}

func (h *MealHandler) Delete(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	mealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidMealID(c)
	}

	if err := h.meals.Delete(c.UserContext(), userID, mealID); err != nil {
		return respondError(c, err, "Failed to delete meal")
	}

	return c.JSON(dto.MessageResponse{Message: "Meal deleted successfully"})
}

// explicitNull reports whether field is present in body with a null value.
func explicitNull(body []byte, field string) bool {
	value := gjson.GetBytes(body, field)
	return value.Exists() && value.Type == gjson.Null
}

func invalidMealID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid meal ID",
	})
}
