package exam

import "gorm.io/gorm"

// Question types
const (
	TypeSingle   = "single"   // exactly one correct choice
	TypeMultiple = "multiple" // one or more correct choices
)

type Question struct {
	gorm.Model
	ExamID          uint   `json:"exam_id" gorm:"index;not null"`
	Text            string `json:"text" gorm:"not null"`
	QType           string `json:"qtype" gorm:"size:20;not null"` // single or multiple
	ImagePath       string `json:"image_path" gorm:"size:300"`
	Reason          string `json:"reason"`
	ReasonImagePath string `json:"reason_image_path" gorm:"size:300"`
	TenantID        uint   `json:"tenant_id" gorm:"index;not null"`

	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
}

type Choice struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text" gorm:"size:400;not null"`
	ImagePath  string `json:"image_path" gorm:"size:300"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	TenantID   uint   `json:"tenant_id" gorm:"index;not null"`
}
