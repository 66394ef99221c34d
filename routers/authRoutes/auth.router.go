package authRoutes

import (
	authControllers "examly/controllers/auth"
	"examly/middleware"
	authValidators "examly/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Get("/me", middleware.JWTMiddleware, middleware.RequireRole(), authControllers.Me)
}
