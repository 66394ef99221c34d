package settingsRoutes

import (
	settingsControllers "examly/controllers/settings"
	"examly/middleware"
	settingsValidators "examly/validators/settings"

	"github.com/gofiber/fiber/v2"
)

func SetupSettingsRoutes(app *fiber.App) {
	settingsGroup := app.Group("/settings", middleware.JWTMiddleware, middleware.RequireRole())

	settingsGroup.Get("/", settingsControllers.GetSettings)
	settingsGroup.Put("/timezone", settingsValidators.UpdateTimezone(), settingsControllers.UpdateTimezone)
	settingsGroup.Put("/password", settingsValidators.ChangePassword(), settingsControllers.ChangePassword)
}
