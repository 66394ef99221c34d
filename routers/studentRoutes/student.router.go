package studentRoutes

import (
	studentControllers "examly/controllers/student"
	"examly/middleware"
	"examly/models"
	attemptValidators "examly/validators/attempt"

	"github.com/gofiber/fiber/v2"
)

func SetupStudentRoutes(app *fiber.App) {
	studentGroup := app.Group("/student", middleware.JWTMiddleware, middleware.RequireRole(models.RoleStudent))

	studentGroup.Get("/dashboard", studentControllers.Dashboard)
	studentGroup.Post("/exams/:id/start", studentControllers.StartExam)

	studentGroup.Get("/attempts/:id/questions/:index", studentControllers.GetQuestion)
	studentGroup.Post("/attempts/:id/questions/:index", attemptValidators.AnswerQuestion(), studentControllers.AnswerQuestion)
	studentGroup.Get("/attempts/:id/review", studentControllers.Review)
	studentGroup.Post("/attempts/:id/submit", studentControllers.Submit)
	studentGroup.Get("/attempts/:id/result", studentControllers.Result)
}
