package routes

import (
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	requireSession fiber.Handler,
	userHandler *handlers.UserHandler,
	mealHandler *handlers.MealHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", metrics.Handler())

	// Users: register and login are public, the rest needs a session
	users := app.Group("/users")
	users.Post("/register", userHandler.Register)
	users.Post("/login", userHandler.Login)
	users.Get("/", requireSession, userHandler.Me)
	users.Post("/logout", requireSession, userHandler.Logout)

	meals := app.Group("/meals", requireSession)
	meals.Post("/", mealHandler.Create)
	meals.Get("/", mealHandler.List)
	meals.Get("/metrics", mealHandler.Metrics)
	meals.Get("/:id", mealHandler.Get)
	meals.Put("/:id", mealHandler.Update)
	meals.Delete("/:id", mealHandler.Delete)
}
