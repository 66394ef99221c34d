package exam

import "gorm.io/gorm"

// ExamDeletionLog keeps an audit row for every soft-deleted exam.
// CreatedAt doubles as the deletion instant.
type ExamDeletionLog struct {
	gorm.Model
	ExamID       uint   `json:"exam_id" gorm:"index;not null"`
	ExamTitle    string `json:"exam_title" gorm:"size:200"`
	InstructorID uint   `json:"instructor_id" gorm:"index;not null"`
	TenantID     uint   `json:"tenant_id" gorm:"index;not null"`
	Note         string `json:"note"`
}
