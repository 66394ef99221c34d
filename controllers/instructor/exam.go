package instructorController

import (
	"fmt"
	"io"
	"log"
	"time"

	"examly/database"
	"examly/middleware"
	"examly/models"
	examModels "examly/models/exam"
	examService "examly/services/exam"
	"examly/utils"
	examValidator "examly/validators/exam"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// loadOwnedExam resolves the :id exam for the authenticated instructor.
// Admins reach every exam in their tenant; instructors only their own.
func loadOwnedExam(c *fiber.Ctx) (*examModels.Exam, *models.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var ex examModels.Exam
	err := db.Where("id = ? AND tenant_id = ? AND is_deleted = ?", c.Params("id"), user.TenantID, false).
		First(&ex).Error
	if err != nil {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if user.Role != models.RoleAdmin && ex.CreatedBy != user.ID {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this exam!", nil)
	}
	return &ex, user, nil
}

// examSummary decorates an exam with counts and readiness for list views.
func examSummary(ex *examModels.Exam, tz string) fiber.Map {
	db := database.Database.Db
	svc := examService.NewService(db)

	var questionCount, attemptCount int64
	db.Model(&examModels.Question{}).Where("exam_id = ? AND tenant_id = ?", ex.ID, ex.TenantID).Count(&questionCount)
	db.Model(&examModels.Attempt{}).Where("exam_id = ?", ex.ID).Count(&attemptCount)
	ready, _ := svc.HasAnswerKey(ex)

	return fiber.Map{
		"id":               ex.ID,
		"title":            ex.Title,
		"description":      ex.Description,
		"start_at":         ex.StartAt,
		"end_at":           ex.EndAt,
		"start_at_local":   utils.FmtDt(utils.ToLocal(ex.StartAt, tz)),
		"end_at_local":     utils.FmtDt(utils.ToLocal(ex.EndAt, tz)),
		"duration_minutes": ex.DurationMinutes,
		"timezone":         ex.Timezone,
		"question_limit":   ex.QuestionLimit,
		"is_closed":        ex.IsClosed,
		"closed_at":        ex.ClosedAt,
		"question_count":   questionCount,
		"attempt_count":    attemptCount,
		"has_answer_key":   ready,
	}
}

func ListExams(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	db := database.Database.Db

	query := db.Where("tenant_id = ? AND is_deleted = ?", user.TenantID, false)
	if user.Role != models.RoleAdmin {
		query = query.Where("created_by = ?", user.ID)
	}

	var exams []examModels.Exam
	if err := query.Order("id desc").Find(&exams).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exams!", nil)
	}

	tz := user.EffectiveTimezone()
	rows := make([]fiber.Map, 0, len(exams))
	for i := range exams {
		rows = append(rows, examSummary(&exams[i], tz))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exams fetched successfully.", rows)
}

// readQuestionsFile returns the parsed question definitions from the
// optional "questions_file" form part, or nil when none was uploaded.
func readQuestionsFile(c *fiber.Ctx) ([]examService.QuestionDef, error) {
	file, err := c.FormFile("questions_file")
	if err != nil || file == nil {
		return nil, nil
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return examService.ParseQuestionsFromExcel(data)
}

// resolveImportedImages downloads any http(s) image references embedded in
// imported rows. A failed fetch drops the image and keeps the question.
func resolveImportedImages(defs []examService.QuestionDef) {
	for i := range defs {
		if path, err := utils.FetchRemoteImage(defs[i].ImagePath); err == nil {
			defs[i].ImagePath = path
		} else {
			log.Printf("Error fetching question image: %v", err)
			defs[i].ImagePath = ""
		}
		for j := range defs[i].Options {
			if path, err := utils.FetchRemoteImage(defs[i].Options[j].ImagePath); err == nil {
				defs[i].Options[j].ImagePath = path
			} else {
				log.Printf("Error fetching option image: %v", err)
				defs[i].Options[j].ImagePath = ""
			}
		}
	}
}

// CreateExam creates an exam and, when a workbook is attached, imports its
// questions in the same transaction. A parse failure creates nothing.
func CreateExam(c *fiber.Ctx) error {
	reqData := c.Locals("validatedExam").(*examValidator.ExamPayload)
	user := middleware.CurrentUser(c)

	startAt, _ := utils.ParseDatetimeLocal(reqData.StartAt, reqData.Timezone)
	endAt, _ := utils.ParseDatetimeLocal(reqData.EndAt, reqData.Timezone)

	defs, err := readQuestionsFile(c)
	if err != nil {
		if examService.IsValidationError(err) {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, err.Error(), nil)
		}
		log.Printf("Error reading questions file: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read the uploaded file!", nil)
	}
	if defs != nil {
		resolveImportedImages(defs)
	}

	ex := examModels.Exam{
		Title:           reqData.Title,
		Description:     reqData.Description,
		StartAt:         startAt,
		EndAt:           endAt,
		DurationMinutes: reqData.DurationMinutes,
		Timezone:        reqData.Timezone,
		QuestionLimit:   reqData.QuestionLimit,
		CreatedBy:       user.ID,
		TenantID:        user.TenantID,
	}

	db := database.Database.Db
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ex).Error; err != nil {
			return err
		}
		if defs != nil {
			return examService.CreateQuestions(tx, &ex, defs)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating exam: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created successfully.", examSummary(&ex, user.EffectiveTimezone()))
}

func GetExam(c *fiber.Ctx) error {
	ex, user, err := loadOwnedExam(c)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully.", examSummary(ex, user.EffectiveTimezone()))
}

func UpdateExam(c *fiber.Ctx) error {
	ex, user, err := loadOwnedExam(c)
	if err != nil {
		return err
	}
	reqData := c.Locals("validatedExam").(*examValidator.ExamPayload)

	startAt, _ := utils.ParseDatetimeLocal(reqData.StartAt, reqData.Timezone)
	endAt, _ := utils.ParseDatetimeLocal(reqData.EndAt, reqData.Timezone)

	ex.Title = reqData.Title
	ex.Description = reqData.Description
	ex.StartAt = startAt
	ex.EndAt = endAt
	ex.DurationMinutes = reqData.DurationMinutes
	ex.Timezone = reqData.Timezone
	ex.QuestionLimit = reqData.QuestionLimit

	if err := database.Database.Db.Save(ex).Error; err != nil {
		log.Printf("Error updating exam: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exam!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam updated successfully.", examSummary(ex, user.EffectiveTimezone()))
}

// DeleteExam soft-deletes the exam and writes an audit row. Attempt history
// stays queryable.
func DeleteExam(c *fiber.Ctx) error {
	ex, user, err := loadOwnedExam(c)
	if err != nil {
		return err
	}

	db := database.Database.Db
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(ex).Update("is_deleted", true).Error; err != nil {
			return err
		}
		entry := examModels.ExamDeletionLog{
			ExamID:       ex.ID,
			ExamTitle:    ex.Title,
			InstructorID: user.ID,
			TenantID:     ex.TenantID,
			Note:         c.FormValue("note"),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		log.Printf("Error deleting exam: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete exam!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam deleted successfully.", nil)
}

// ToggleClose flips the manual close flag. Closing blocks new starts but
// leaves open attempts running until their own deadlines.
func ToggleClose(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}

	db := database.Database.Db
	if ex.IsClosed {
		err = db.Model(ex).Updates(map[string]interface{}{"is_closed": false, "closed_at": nil}).Error
	} else {
		now := time.Now().UTC()
		err = db.Model(ex).Updates(map[string]interface{}{"is_closed": true, "closed_at": now}).Error
	}
	if err != nil {
		log.Printf("Error toggling exam close: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exam!", nil)
	}

	message := "Exam reopened successfully."
	if ex.IsClosed {
		message = "Exam closed successfully."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{"is_closed": ex.IsClosed})
}

// Results lists every attempt on the exam with student context, newest first.
func Results(c *fiber.Ctx) error {
	ex, user, err := loadOwnedExam(c)
	if err != nil {
		return err
	}

	db := database.Database.Db
	var attempts []examModels.Attempt
	if err := db.Where("exam_id = ?", ex.ID).Order("id desc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch results!", nil)
	}

	tz := user.EffectiveTimezone()
	rows := make([]fiber.Map, 0, len(attempts))
	for _, a := range attempts {
		var student models.User
		db.Select("username, full_name").First(&student, a.StudentID)

		rows = append(rows, fiber.Map{
			"attempt_id":         a.ID,
			"student":            student.Username,
			"student_name":       student.FullName,
			"started_at_local":   utils.FmtDt(utils.ToLocal(a.StartedAt, tz)),
			"submitted_at_local": utils.FmtDtPtr(a.SubmittedAt, tz),
			"score_percent":      a.ScorePercent,
			"num_correct":        a.NumCorrect,
			"num_questions":      a.NumQuestions,
			"in_progress":        !a.IsSubmitted(),
		})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Results fetched successfully.", rows)
}

func sendWorkbook(c *fiber.Ctx, f *excelize.File, filename string) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Printf("Error writing workbook: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build the Excel file!", nil)
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

// ExportQuestions streams the exam's questions as a workbook the importer
// accepts back unchanged.
func ExportQuestions(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}
	questions, err := examService.ExamQuestions(database.Database.Db, ex)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}
	f, err := examService.BuildExamWorkbook(questions)
	if err != nil {
		log.Printf("Error building workbook: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build the Excel file!", nil)
	}
	return sendWorkbook(c, f, fmt.Sprintf("exam_%d_questions.xlsx", ex.ID))
}

// DownloadTemplate streams the blank import template with sample rows.
func DownloadTemplate(c *fiber.Ctx) error {
	f, err := examService.BuildTemplateWorkbook()
	if err != nil {
		log.Printf("Error building template: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build the template!", nil)
	}
	return sendWorkbook(c, f, "question_template.xlsx")
}
