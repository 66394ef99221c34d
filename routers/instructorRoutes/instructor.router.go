package instructorRoutes

import (
	instructorControllers "examly/controllers/instructor"
	"examly/middleware"
	"examly/models"
	examValidators "examly/validators/exam"

	"github.com/gofiber/fiber/v2"
)

func SetupInstructorRoutes(app *fiber.App) {
	examGroup := app.Group("/instructor/exams", middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor))

	examGroup.Get("/", instructorControllers.ListExams)
	examGroup.Post("/", examValidators.CreateExam(), instructorControllers.CreateExam)
	examGroup.Get("/template", instructorControllers.DownloadTemplate)
	examGroup.Get("/:id", instructorControllers.GetExam)
	examGroup.Put("/:id", examValidators.UpdateExam(), instructorControllers.UpdateExam)
	examGroup.Delete("/:id", instructorControllers.DeleteExam)
	examGroup.Patch("/:id/close", instructorControllers.ToggleClose)
	examGroup.Get("/:id/results", instructorControllers.Results)
	examGroup.Get("/:id/export", instructorControllers.ExportQuestions)

	examGroup.Get("/:id/questions", instructorControllers.ListQuestions)
	examGroup.Post("/:id/questions", instructorControllers.AddQuestion)
	examGroup.Post("/:id/questions/import", examValidators.ImportQuestions(), instructorControllers.ImportQuestions)
	examGroup.Put("/:id/questions/:qid", instructorControllers.UpdateQuestion)
	examGroup.Delete("/:id/questions/:qid", instructorControllers.DeleteQuestion)

	examGroup.Get("/:id/answer-key", instructorControllers.AnswerKey)
	examGroup.Post("/:id/answer-key", instructorControllers.SaveAnswerKey)
}
