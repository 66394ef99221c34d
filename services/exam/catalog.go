package exam

import (
	examModels "examly/models/exam"

	"gorm.io/gorm"
)

// CreateQuestions persists parsed question definitions under an exam.
// All-or-nothing: runs in one transaction, so a mid-way failure leaves no
// partial Question/Choice rows behind.
func CreateQuestions(db *gorm.DB, ex *examModels.Exam, defs []QuestionDef) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, def := range defs {
			question := examModels.Question{
				ExamID:          ex.ID,
				Text:            def.Text,
				QType:           def.QType,
				ImagePath:       def.ImagePath,
				Reason:          def.Reason,
				ReasonImagePath: def.ReasonImagePath,
				TenantID:        ex.TenantID,
			}
			if err := tx.Create(&question).Error; err != nil {
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
		}
		return nil
	})
}

// ExamQuestions loads an exam's questions with choices in storage order.
func ExamQuestions(db *gorm.DB, ex *examModels.Exam) ([]examModels.Question, error) {
	var questions []examModels.Question
	err := db.Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("exam_id = ? AND tenant_id = ?", ex.ID, ex.TenantID).
		Order("id asc").
		Find(&questions).Error
	return questions, err
}
