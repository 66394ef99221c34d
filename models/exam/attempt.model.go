package exam

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt is one student's timed pass through a drawn, ordered subset of an
// exam's questions. QuestionOrder is fixed at creation and never mutated.
// The partial unique index serializes concurrent starts: at most one open
// (unsubmitted) attempt per (exam, student).
type Attempt struct {
	gorm.Model
	ExamID        uint           `json:"exam_id" gorm:"index:idx_open_attempt,unique,where:submitted_at IS NULL;not null"`
	StudentID     uint           `json:"student_id" gorm:"index:idx_open_attempt,unique,where:submitted_at IS NULL;index;not null"`
	TenantID      uint           `json:"tenant_id" gorm:"index;not null"`
	StartedAt     time.Time      `json:"started_at" gorm:"not null"`
	SubmittedAt   *time.Time     `json:"submitted_at"`
	ScorePercent  *float64       `json:"score_percent"`
	NumCorrect    *int           `json:"num_correct"`
	NumQuestions  int            `json:"num_questions"`
	QuestionOrder datatypes.JSON `json:"question_order" gorm:"not null"` // JSON array of question IDs
}

// OrderList decodes the drawn question order. A corrupt value reads as
// "no questions" rather than an error.
func (a *Attempt) OrderList() []uint {
	var ids []uint
	if err := json.Unmarshal(a.QuestionOrder, &ids); err != nil {
		return nil
	}
	return ids
}

// IsSubmitted reports whether the attempt reached its terminal state.
func (a *Attempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// Answer records one selected choice for one question within an attempt.
// A multiple-type question owns one row per selected choice.
type Answer struct {
	gorm.Model
	AttemptID  uint `json:"attempt_id" gorm:"index;not null"`
	QuestionID uint `json:"question_id" gorm:"index;not null"`
	ChoiceID   uint `json:"choice_id" gorm:"not null"`
	TenantID   uint `json:"tenant_id" gorm:"index;not null"`
}
