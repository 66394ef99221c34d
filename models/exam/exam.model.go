package exam

import (
	"time"

	"gorm.io/gorm"
)

// Exam is a timed, randomized multiple-choice exam owned by one instructor
// inside one tenant. StartAt/EndAt are stored in UTC; Timezone is the zone
// the instructor authored the window in, kept for form display only.
type Exam struct {
	gorm.Model
	Title           string     `json:"title" gorm:"size:200;not null"`
	Description     string     `json:"description"`
	StartAt         time.Time  `json:"start_at" gorm:"not null"`
	EndAt           time.Time  `json:"end_at" gorm:"not null"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null"`
	Timezone        string     `json:"timezone" gorm:"size:64;default:'UTC'"`
	QuestionLimit   *int       `json:"question_limit"`
	IsClosed        bool       `json:"is_closed" gorm:"default:false"`
	ClosedAt        *time.Time `json:"closed_at"`
	CreatedBy       uint       `json:"created_by" gorm:"index;not null"`
	TenantID        uint       `json:"tenant_id" gorm:"index;not null"`
	IsDeleted       bool       `json:"is_deleted" gorm:"default:false"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
}

// IsActive reports whether the exam window is open at the given instant.
// Effective status is derived from flags and now, never stored.
func (e *Exam) IsActive(now time.Time) bool {
	return !e.IsClosed && !now.Before(e.StartAt) && !now.After(e.EndAt)
}
