package studentController

import (
	"errors"
	"log"
	"time"

	"examly/database"
	"examly/middleware"
	"examly/models"
	examModels "examly/models/exam"
	examService "examly/services/exam"
	"examly/utils"
	attemptValidator "examly/validators/attempt"

	"github.com/gofiber/fiber/v2"
)

// Exam statuses shown on the student dashboard. Derived from flags and the
// clock on every request, never stored.
const (
	statusNotReady  = "not_ready"
	statusUpcoming  = "upcoming"
	statusClosed    = "closed"
	statusActive    = "active"
	statusCompleted = "completed_active"
)

func examStatus(ex *examModels.Exam, hasKey bool, hasSubmitted bool, now time.Time) string {
	switch {
	case !hasKey:
		return statusNotReady
	case now.Before(ex.StartAt):
		return statusUpcoming
	case ex.IsClosed || now.After(ex.EndAt):
		return statusClosed
	case hasSubmitted:
		return statusCompleted
	default:
		return statusActive
	}
}

// Dashboard lists the exams of the student's instructor with live status,
// countdowns, and the student's attempt history per exam.
func Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	db := database.Database.Db
	svc := examService.NewService(db)
	now := time.Now().UTC()
	tz := user.EffectiveTimezone()

	query := db.Where("tenant_id = ? AND is_deleted = ?", user.TenantID, false)
	if user.Role != models.RoleAdmin {
		if user.InstructorID == nil {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "No exams available.", []fiber.Map{})
		}
		query = query.Where("created_by = ?", *user.InstructorID)
	}

	var exams []examModels.Exam
	if err := query.Order("start_at asc").Find(&exams).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exams!", nil)
	}

	rows := make([]fiber.Map, 0, len(exams))
	for i := range exams {
		ex := &exams[i]
		hasKey, err := svc.HasAnswerKey(ex)
		if err != nil {
			log.Printf("Error checking answer key: %v", err)
			continue
		}

		var submittedCount int64
		db.Model(&examModels.Attempt{}).
			Where("exam_id = ? AND student_id = ? AND submitted_at IS NOT NULL", ex.ID, user.ID).
			Count(&submittedCount)
		var openAttempt examModels.Attempt
		hasOpen := db.Where("exam_id = ? AND student_id = ? AND submitted_at IS NULL", ex.ID, user.ID).
			First(&openAttempt).Error == nil

		status := examStatus(ex, hasKey, submittedCount > 0, now)
		countdown := 0
		if status == statusUpcoming {
			countdown = int(ex.StartAt.Sub(now).Seconds())
		}

		row := fiber.Map{
			"id":                ex.ID,
			"title":             ex.Title,
			"description":       ex.Description,
			"status":            status,
			"start_at_local":    utils.FmtDt(utils.ToLocal(ex.StartAt, tz)),
			"end_at_local":      utils.FmtDt(utils.ToLocal(ex.EndAt, tz)),
			"duration_minutes":  ex.DurationMinutes,
			"countdown_seconds": countdown,
			"attempts_taken":    submittedCount,
			"has_open_attempt":  hasOpen,
		}
		if hasOpen {
			row["open_attempt_id"] = openAttempt.ID
		}
		rows = append(rows, row)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", rows)
}

// startErrorResponse maps attempt-start business errors onto responses.
func startErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, examService.ErrDeleted),
		errors.Is(err, examService.ErrNotStarted),
		errors.Is(err, examService.ErrClosed),
		errors.Is(err, examService.ErrNotReady),
		errors.Is(err, examService.ErrEmptyPool):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
	case errors.Is(err, examService.ErrForbidden):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this exam!", nil)
	default:
		log.Printf("Error starting attempt: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start the exam!", nil)
	}
}

// StartExam opens (or resumes) the student's attempt and points at the first
// question.
func StartExam(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	db := database.Database.Db
	svc := examService.NewService(db)

	var ex examModels.Exam
	if err := db.First(&ex, c.Params("id")).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	attempt, err := svc.Start(&ex, user, time.Now().UTC())
	if err != nil {
		return startErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam started.", fiber.Map{
		"attempt_id":     attempt.ID,
		"num_questions":  attempt.NumQuestions,
		"question_index": 1,
	})
}

// loadOpenAttempt resolves the :id attempt and its exam for the student.
// A passed deadline finalizes the attempt on the spot.
func loadOpenAttempt(c *fiber.Ctx) (*examModels.Attempt, *examModels.Exam, bool, error) {
	user := middleware.CurrentUser(c)
	db := database.Database.Db
	svc := examService.NewService(db)

	attemptID, _ := c.ParamsInt("id")
	attempt, err := svc.GetAttempt(uint(attemptID), user)
	if errors.Is(err, examService.ErrNotFound) {
		return nil, nil, false, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
	}
	if errors.Is(err, examService.ErrForbidden) {
		return nil, nil, false, middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this attempt!", nil)
	}
	if err != nil {
		return nil, nil, false, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load the attempt!", nil)
	}

	var ex examModels.Exam
	if err := db.First(&ex, attempt.ExamID).Error; err != nil {
		return nil, nil, false, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	now := time.Now().UTC()
	if !attempt.IsSubmitted() && examService.TimeRemaining(attempt, &ex, now) <= 0 {
		if err := svc.Grade(attempt, now); err != nil {
			log.Printf("Error auto-submitting expired attempt: %v", err)
		}
		return attempt, &ex, true, nil
	}
	return attempt, &ex, false, nil
}

// GetQuestion serves the question at a 1-based position in the attempt's
// fixed order, with the student's current selection.
func GetQuestion(c *fiber.Ctx) error {
	attempt, ex, expired, err := loadOpenAttempt(c)
	if err != nil {
		return err
	}
	if expired {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Time is up. Your exam was submitted automatically.",
			fiber.Map{"attempt_id": attempt.ID, "submitted": true})
	}
	if attempt.IsSubmitted() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Exam already submitted.",
			fiber.Map{"attempt_id": attempt.ID, "submitted": true})
	}

	db := database.Database.Db
	svc := examService.NewService(db)

	index, _ := c.ParamsInt("index", 1)
	question, err := svc.QuestionAt(attempt, index)
	if errors.Is(err, examService.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load the question!", nil)
	}

	selected, err := svc.SelectedChoiceIDs(attempt.ID, question.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load the question!", nil)
	}

	choices := make([]fiber.Map, 0, len(question.Choices))
	for _, ch := range question.Choices {
		choices = append(choices, fiber.Map{
			"id":        ch.ID,
			"text":      ch.Text,
			"image_url": utils.ImageURL(ch.ImagePath),
		})
	}

	now := time.Now().UTC()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully.", fiber.Map{
		"attempt_id":             attempt.ID,
		"question_index":         index,
		"num_questions":          attempt.NumQuestions,
		"text":                   question.Text,
		"qtype":                  question.QType,
		"image_url":              utils.ImageURL(question.ImagePath),
		"choices":                choices,
		"selected_choice_ids":    selected,
		"time_remaining_seconds": int(examService.TimeRemaining(attempt, ex, now).Seconds()),
		"per_question_seconds":   examService.PerQuestionSeconds(ex, attempt.NumQuestions),
	})
}

// AnswerQuestion saves the selection for one question and resolves the next
// position. "previous" at the first question stays put; "next" past the last
// question lands on review.
func AnswerQuestion(c *fiber.Ctx) error {
	attempt, _, expired, err := loadOpenAttempt(c)
	if err != nil {
		return err
	}
	if expired {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Time is up. Your exam was submitted automatically.",
			fiber.Map{"attempt_id": attempt.ID, "submitted": true})
	}
	reqData := c.Locals("validatedAnswer").(*attemptValidator.AnswerPayload)

	db := database.Database.Db
	svc := examService.NewService(db)

	index, _ := c.ParamsInt("index", 1)
	question, err := svc.QuestionAt(attempt, index)
	if errors.Is(err, examService.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load the question!", nil)
	}

	if err := svc.SaveAnswers(attempt, question, reqData.SelectedChoiceIDs); err != nil {
		if errors.Is(err, examService.ErrAlreadySubmitted) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(),
				fiber.Map{"attempt_id": attempt.ID, "submitted": true})
		}
		log.Printf("Error saving answers: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save your answer!", nil)
	}

	nextIndex := index
	review := false
	switch reqData.Action {
	case attemptValidator.ActionPrevious:
		if index > 1 {
			nextIndex = index - 1
		}
	case attemptValidator.ActionReview:
		review = true
	default:
		if index >= attempt.NumQuestions {
			review = true
		} else {
			nextIndex = index + 1
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer saved.", fiber.Map{
		"attempt_id":     attempt.ID,
		"question_index": nextIndex,
		"review":         review,
	})
}

// Review summarizes which questions are answered before final submission.
func Review(c *fiber.Ctx) error {
	attempt, ex, expired, err := loadOpenAttempt(c)
	if err != nil {
		return err
	}
	if expired {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Time is up. Your exam was submitted automatically.",
			fiber.Map{"attempt_id": attempt.ID, "submitted": true})
	}
	if attempt.IsSubmitted() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Exam already submitted.",
			fiber.Map{"attempt_id": attempt.ID, "submitted": true})
	}

	svc := examService.NewService(database.Database.Db)
	answers, err := svc.AnswersMap(attempt.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load the review!", nil)
	}

	order := attempt.OrderList()
	items := make([]fiber.Map, 0, len(order))
	answered := 0
	for i, qid := range order {
		isAnswered := len(answers[qid]) > 0
		if isAnswered {
			answered++
		}
		items = append(items, fiber.Map{
			"question_index": i + 1,
			"answered":       isAnswered,
		})
	}

	now := time.Now().UTC()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review fetched successfully.", fiber.Map{
		"attempt_id":             attempt.ID,
		"num_questions":          attempt.NumQuestions,
		"answered":               answered,
		"questions":              items,
		"time_remaining_seconds": int(examService.TimeRemaining(attempt, ex, now).Seconds()),
	})
}

// Submit finalizes the attempt. Repeated submits return the stored result
// unchanged.
func Submit(c *fiber.Ctx) error {
	attempt, ex, _, err := loadOpenAttempt(c)
	if err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	svc := examService.NewService(database.Database.Db)

	alreadySubmitted := attempt.IsSubmitted()
	if err := svc.Grade(attempt, time.Now().UTC()); err != nil {
		log.Printf("Error grading attempt: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit the exam!", nil)
	}

	if !alreadySubmitted && attempt.ScorePercent != nil && attempt.NumCorrect != nil {
		utils.SendResultEmail(user.Email, user.Username, ex.Title,
			*attempt.NumCorrect, attempt.NumQuestions, *attempt.ScorePercent)
	}

	message := "Exam submitted successfully."
	if alreadySubmitted {
		message = "Exam already submitted."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"attempt_id":    attempt.ID,
		"score_percent": attempt.ScorePercent,
		"num_correct":   attempt.NumCorrect,
		"num_questions": attempt.NumQuestions,
	})
}

// Result renders the graded attempt with per-question breakdown and
// explanations. Only available once the attempt is submitted.
func Result(c *fiber.Ctx) error {
	attempt, ex, _, err := loadOpenAttempt(c)
	if err != nil {
		return err
	}
	if !attempt.IsSubmitted() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This attempt has not been submitted yet.", nil)
	}

	user := middleware.CurrentUser(c)
	svc := examService.NewService(database.Database.Db)

	answers, err := svc.AnswersMap(attempt.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load the result!", nil)
	}

	items := make([]fiber.Map, 0, attempt.NumQuestions)
	for i := 1; i <= attempt.NumQuestions; i++ {
		question, err := svc.QuestionAt(attempt, i)
		if err != nil {
			continue
		}

		given := make(map[uint]bool, len(answers[question.ID]))
		for _, id := range answers[question.ID] {
			given[id] = true
		}

		correct := len(given) > 0
		choices := make([]fiber.Map, 0, len(question.Choices))
		for _, ch := range question.Choices {
			if ch.IsCorrect != given[ch.ID] {
				correct = false
			}
			choices = append(choices, fiber.Map{
				"id":         ch.ID,
				"text":       ch.Text,
				"image_url":  utils.ImageURL(ch.ImagePath),
				"is_correct": ch.IsCorrect,
				"selected":   given[ch.ID],
			})
		}

		items = append(items, fiber.Map{
			"question_index":   i,
			"text":             question.Text,
			"qtype":            question.QType,
			"image_url":        utils.ImageURL(question.ImagePath),
			"reason":           question.Reason,
			"reason_image_url": utils.ImageURL(question.ReasonImagePath),
			"correct":          correct,
			"choices":          choices,
		})
	}

	tz := user.EffectiveTimezone()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Result fetched successfully.", fiber.Map{
		"attempt_id":         attempt.ID,
		"exam_title":         ex.Title,
		"score_percent":      attempt.ScorePercent,
		"num_correct":        attempt.NumCorrect,
		"num_questions":      attempt.NumQuestions,
		"started_at_local":   utils.FmtDt(utils.ToLocal(attempt.StartedAt, tz)),
		"submitted_at_local": utils.FmtDtPtr(attempt.SubmittedAt, tz),
		"questions":          items,
	})
}
