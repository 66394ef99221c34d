package adminRoutes

import (
	adminControllers "examly/controllers/admin"
	"examly/middleware"
	"examly/models"
	adminValidators "examly/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/dashboard", adminControllers.Dashboard)

	adminGroup.Get("/tenants", adminControllers.ListTenants)
	adminGroup.Post("/tenants", adminValidators.CreateTenant(), adminControllers.CreateTenant)

	adminGroup.Get("/users", adminControllers.ListUsers)
	adminGroup.Post("/users", adminValidators.CreateUser(), adminControllers.CreateUser)
	adminGroup.Put("/users/:id", adminValidators.UpdateUser(), adminControllers.UpdateUser)
	adminGroup.Delete("/users/:id", adminControllers.DeleteUser)

	adminGroup.Get("/logs/access", adminControllers.AccessLogs)
	adminGroup.Get("/logs/deletions", adminControllers.DeletionLogs)
	adminGroup.Get("/logs/attempts", adminControllers.AttemptLogs)

	adminGroup.Get("/backups", adminControllers.ListBackups)
	adminGroup.Post("/backups", adminControllers.CreateBackup)
	adminGroup.Get("/backups/:name/download", adminControllers.DownloadBackup)
	adminGroup.Post("/backups/restore", adminControllers.RestoreUpload)
	adminGroup.Post("/backups/:name/restore", adminControllers.RestoreFile)
	adminGroup.Post("/reset", adminControllers.FactoryReset)
}
