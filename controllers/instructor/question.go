package instructorController

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"examly/database"
	"examly/middleware"
	examModels "examly/models/exam"
	examService "examly/services/exam"
	"examly/utils"
	examValidator "examly/validators/exam"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func questionView(q *examModels.Question) fiber.Map {
	choices := make([]fiber.Map, 0, len(q.Choices))
	for _, ch := range q.Choices {
		choices = append(choices, fiber.Map{
			"id":         ch.ID,
			"text":       ch.Text,
			"image_url":  utils.ImageURL(ch.ImagePath),
			"is_correct": ch.IsCorrect,
		})
	}
	return fiber.Map{
		"id":               q.ID,
		"text":             q.Text,
		"qtype":            q.QType,
		"image_url":        utils.ImageURL(q.ImagePath),
		"reason":           q.Reason,
		"reason_image_url": utils.ImageURL(q.ReasonImagePath),
		"choices":          choices,
	}
}

func ListQuestions(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}

	questions, err := examService.ExamQuestions(database.Database.Db, ex)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	rows := make([]fiber.Map, 0, len(questions))
	for i := range questions {
		rows = append(rows, questionView(&questions[i]))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully.", rows)
}

// parseLetters decodes "A,C" into 0-based option indices within range.
func parseLetters(raw string, optionCount int) []int {
	cleaned := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	var indices []int
	for _, part := range strings.Split(cleaned, ",") {
		if len(part) != 1 || part[0] < 'A' || part[0] > 'Z' {
			continue
		}
		if i := int(part[0] - 'A'); i < optionCount {
			indices = append(indices, i)
		}
	}
	return indices
}

// questionFromForm builds one question definition from the manual add/edit
// form: text fields option1..option6, letter list "correct", and optional
// image file parts.
func questionFromForm(c *fiber.Ctx) (*examService.QuestionDef, string) {
	text := strings.TrimSpace(c.FormValue("text"))
	if text == "" {
		return nil, "Question text is required!"
	}

	qtype := examModels.TypeSingle
	if strings.Contains(strings.ToLower(c.FormValue("qtype")), "multi") {
		qtype = examModels.TypeMultiple
	}

	var options []examService.OptionDef
	for i := 1; i <= examService.MaxOptions; i++ {
		optText := strings.TrimSpace(c.FormValue(fmt.Sprintf("option%d", i)))
		optImage := ""
		if file, err := c.FormFile(fmt.Sprintf("option%d_image", i)); err == nil {
			path, err := utils.SaveImageFile(file)
			if err != nil {
				return nil, err.Error()
			}
			optImage = path
		}
		if optText == "" && optImage == "" {
			continue
		}
		if optText == "" {
			return nil, fmt.Sprintf("Option %d has an image but no text!", i)
		}
		options = append(options, examService.OptionDef{Text: optText, ImagePath: optImage})
	}
	if len(options) < 2 {
		return nil, "At least two options are required!"
	}

	correct := parseLetters(c.FormValue("correct"), len(options))
	// A single-choice question keeps only the first marked option.
	if qtype == examModels.TypeSingle && len(correct) > 1 {
		correct = correct[:1]
	}

	imagePath := ""
	if file, err := c.FormFile("question_image"); err == nil {
		path, err := utils.SaveImageFile(file)
		if err != nil {
			return nil, err.Error()
		}
		imagePath = path
	}
	reasonImagePath := ""
	if file, err := c.FormFile("reason_image"); err == nil {
		path, err := utils.SaveImageFile(file)
		if err != nil {
			return nil, err.Error()
		}
		reasonImagePath = path
	}

	return &examService.QuestionDef{
		Text:            text,
		QType:           qtype,
		Options:         options,
		Correct:         correct,
		Reason:          strings.TrimSpace(c.FormValue("reason")),
		ImagePath:       imagePath,
		ReasonImagePath: reasonImagePath,
	}, ""
}

func AddQuestion(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}

	def, msg := questionFromForm(c)
	if msg != "" {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, msg, nil)
	}

	if err := examService.CreateQuestions(database.Database.Db, ex, []examService.QuestionDef{*def}); err != nil {
		log.Printf("Error adding question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add question!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully.", nil)
}

func loadExamQuestion(c *fiber.Ctx, ex *examModels.Exam) (*examModels.Question, error) {
	db := database.Database.Db

	var question examModels.Question
	err := db.Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("id = ? AND exam_id = ? AND tenant_id = ?", c.Params("qid"), ex.ID, ex.TenantID).
		First(&question).Error
	if err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	return &question, nil
}

// UpdateQuestion replaces the question's text, type, options and key with
// the submitted form. Existing answers pointing at removed choices become
// unmatchable at grading time.
func UpdateQuestion(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}
	question, err := loadExamQuestion(c, ex)
	if err != nil {
		return err
	}

	def, msg := questionFromForm(c)
	if msg != "" {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, msg, nil)
	}

	db := database.Database.Db
	err = db.Transaction(func(tx *gorm.DB) error {
		question.Text = def.Text
		question.QType = def.QType
		question.Reason = def.Reason
		if def.ImagePath != "" {
			question.ImagePath = def.ImagePath
		}
		if def.ReasonImagePath != "" {
			question.ReasonImagePath = def.ReasonImagePath
		}
		if err := tx.Save(question).Error; err != nil {
			return err
		}

		if err := tx.Where("question_id = ?", question.ID).Delete(&examModels.Choice{}).Error; err != nil {
			return err
		}
		correct := make(map[int]bool, len(def.Correct))
		for _, i := range def.Correct {
			correct[i] = true
		}
		for i, opt := range def.Options {
			choice := examModels.Choice{
				QuestionID: question.ID,
				Text:       opt.Text,
				ImagePath:  opt.ImagePath,
				IsCorrect:  correct[i],
				TenantID:   ex.TenantID,
			}
			if err := tx.Create(&choice).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully.", nil)
}

func DeleteQuestion(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}
	question, err := loadExamQuestion(c, ex)
	if err != nil {
		return err
	}

	db := database.Database.Db
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", question.ID).Delete(&examModels.Choice{}).Error; err != nil {
			return err
		}
		return tx.Delete(question).Error
	})
	if err != nil {
		log.Printf("Error deleting question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully.", nil)
}

// ImportQuestions bulk-imports a workbook into an existing exam, optionally
// restricted to a 1-based question range.
func ImportQuestions(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}
	reqData := c.Locals("validatedImport").(*examValidator.ImportPayload)

	defs, err := readQuestionsFile(c)
	if err != nil {
		if examService.IsValidationError(err) {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, err.Error(), nil)
		}
		log.Printf("Error reading questions file: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read the uploaded file!", nil)
	}
	if defs == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No questions file provided!", nil)
	}

	defs = applyImportRange(defs, reqData.ImportStart, reqData.ImportEnd)
	if len(defs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "The selected range contains no questions!", nil)
	}
	resolveImportedImages(defs)

	if err := examService.CreateQuestions(database.Database.Db, ex, defs); err != nil {
		log.Printf("Error importing questions: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to import questions!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true,
		fmt.Sprintf("%d questions imported successfully.", len(defs)), nil)
}

// applyImportRange keeps questions start..end (1-based, inclusive). Zero
// bounds mean "from the beginning" and "to the end".
func applyImportRange(defs []examService.QuestionDef, start, end int) []examService.QuestionDef {
	if start <= 0 {
		start = 1
	}
	if end <= 0 || end > len(defs) {
		end = len(defs)
	}
	if start > len(defs) || start > end {
		return nil
	}
	return defs[start-1 : end]
}

// AnswerKey returns the key matrix for every question of the exam.
func AnswerKey(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}

	questions, err := examService.ExamQuestions(database.Database.Db, ex)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	rows := make([]fiber.Map, 0, len(questions))
	for i := range questions {
		rows = append(rows, questionView(&questions[i]))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer key fetched successfully.", rows)
}

type answerKeyPayload struct {
	// Keys maps question ID to the choice IDs that are correct.
	Keys map[string][]uint `json:"keys"`
}

// SaveAnswerKey rewrites the is_correct flags from the submitted key map.
// Single-choice questions keep only the first submitted choice.
func SaveAnswerKey(c *fiber.Ctx) error {
	ex, _, err := loadOwnedExam(c)
	if err != nil {
		return err
	}

	reqData := new(answerKeyPayload)
	if err := c.BodyParser(reqData); err != nil || reqData.Keys == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db
	err = db.Transaction(func(tx *gorm.DB) error {
		for rawID, choiceIDs := range reqData.Keys {
			qid, err := strconv.ParseUint(rawID, 10, 64)
			if err != nil {
				continue
			}
			var question examModels.Question
			err = tx.Where("id = ? AND exam_id = ? AND tenant_id = ?", qid, ex.ID, ex.TenantID).
				First(&question).Error
			if err != nil {
				continue
			}
			if question.QType == examModels.TypeSingle && len(choiceIDs) > 1 {
				choiceIDs = choiceIDs[:1]
			}

			if err := tx.Model(&examModels.Choice{}).
				Where("question_id = ?", question.ID).
				Update("is_correct", false).Error; err != nil {
				return err
			}
			if len(choiceIDs) > 0 {
				if err := tx.Model(&examModels.Choice{}).
					Where("question_id = ? AND id IN ?", question.ID, choiceIDs).
					Update("is_correct", true).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error saving answer key: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save answer key!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer key saved successfully.", nil)
}
