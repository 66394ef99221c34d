package examValidator

import (
	"examly/middleware"
	"examly/utils"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ExamPayload carries the multipart form fields of the exam create/edit
// forms. The optional questions file is read from the multipart form by the
// controller.
type ExamPayload struct {
	Title           string `form:"title" json:"title"`
	Description     string `form:"description" json:"description"`
	StartAt         string `form:"start_at" json:"start_at"` // datetime-local
	EndAt           string `form:"end_at" json:"end_at"`
	DurationMinutes int    `form:"duration_minutes" json:"duration_minutes"`
	Timezone        string `form:"timezone" json:"timezone"`
	QuestionLimit   *int   `form:"question_limit" json:"question_limit"`
}

func validateExamPayload(c *fiber.Ctx) (*ExamPayload, map[string]string) {
	reqData := new(ExamPayload)
	if err := c.BodyParser(reqData); err != nil {
		return nil, map[string]string{"body": "Invalid request body!"}
	}

	reqData.Title = strings.TrimSpace(reqData.Title)
	reqData.Timezone = strings.TrimSpace(reqData.Timezone)
	if reqData.Timezone == "" {
		reqData.Timezone = "UTC"
	}

	errors := make(map[string]string)
	if reqData.Title == "" {
		errors["title"] = "Title is required!"
	}
	if reqData.DurationMinutes <= 0 {
		errors["duration_minutes"] = "Duration must be a positive number of minutes!"
	}
	if reqData.QuestionLimit != nil && *reqData.QuestionLimit <= 0 {
		errors["question_limit"] = "Question count must be a positive number!"
	}
	if !utils.IsValidTimezone(reqData.Timezone) {
		errors["timezone"] = "Unknown timezone!"
	}

	startAt, err := utils.ParseDatetimeLocal(reqData.StartAt, reqData.Timezone)
	if err != nil {
		errors["start_at"] = "Start time is required (YYYY-MM-DDTHH:MM)!"
	}
	endAt, err := utils.ParseDatetimeLocal(reqData.EndAt, reqData.Timezone)
	if err != nil {
		errors["end_at"] = "End time is required (YYYY-MM-DDTHH:MM)!"
	}
	if len(errors) == 0 && !endAt.After(startAt) {
		errors["end_at"] = "End time must be after start time!"
	}

	return reqData, errors
}

func CreateExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, errors := validateExamPayload(c)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedExam", reqData)
		return c.Next()
	}
}

func UpdateExam() fiber.Handler {
	return CreateExam()
}

// ImportPayload carries the optional row range of a bulk question import.
type ImportPayload struct {
	ImportStart int `form:"import_start" json:"import_start"`
	ImportEnd   int `form:"import_end" json:"import_end"`
}

func ImportQuestions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ImportPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.ImportStart < 0 || reqData.ImportEnd < 0 {
			errors["range"] = "Please enter valid numbers for the question range!"
		}
		if reqData.ImportStart > 0 && reqData.ImportEnd > 0 && reqData.ImportStart > reqData.ImportEnd {
			errors["range"] = "Invalid range. 'From' must be >= 1 and <= 'To'!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedImport", reqData)
		return c.Next()
	}
}
