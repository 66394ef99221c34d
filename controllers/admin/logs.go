package adminController

import (
	"examly/database"
	"examly/middleware"
	"examly/models"
	examModels "examly/models/exam"

	"github.com/gofiber/fiber/v2"
)

const logPageSize = 200

// AccessLogs returns the most recent request log entries.
func AccessLogs(c *fiber.Ctx) error {
	db := database.Database.Db

	query := db.Model(&models.AccessLog{})
	if tenantID := c.QueryInt("tenant_id"); tenantID > 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}

	var logs []models.AccessLog
	if err := query.Order("id desc").Limit(logPageSize).Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch access logs!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access logs fetched successfully.", logs)
}

// DeletionLogs returns the exam deletion audit trail, newest first.
func DeletionLogs(c *fiber.Ctx) error {
	db := database.Database.Db

	var logs []examModels.ExamDeletionLog
	if err := db.Order("id desc").Limit(logPageSize).Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch deletion logs!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Deletion logs fetched successfully.", logs)
}

// AttemptLogs returns recent attempts across all tenants with exam and
// student context resolved.
func AttemptLogs(c *fiber.Ctx) error {
	db := database.Database.Db

	var attempts []examModels.Attempt
	if err := db.Order("id desc").Limit(logPageSize).Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	rows := make([]fiber.Map, 0, len(attempts))
	for _, a := range attempts {
		var ex examModels.Exam
		db.Select("title").First(&ex, a.ExamID)
		var student models.User
		db.Select("username").First(&student, a.StudentID)

		rows = append(rows, fiber.Map{
			"id":            a.ID,
			"exam_id":       a.ExamID,
			"exam_title":    ex.Title,
			"student_id":    a.StudentID,
			"student":       student.Username,
			"tenant_id":     a.TenantID,
			"started_at":    a.StartedAt,
			"submitted_at":  a.SubmittedAt,
			"score_percent": a.ScorePercent,
			"num_correct":   a.NumCorrect,
			"num_questions": a.NumQuestions,
		})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt logs fetched successfully.", rows)
}
