package exam

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamProgress remembers, per (exam, student), which question IDs were already
// drawn into some attempt during the current cycle. The set resets once it
// would cover the whole pool.
type ExamProgress struct {
	gorm.Model
	ExamID         uint           `json:"exam_id" gorm:"uniqueIndex:idx_exam_student;not null"`
	StudentID      uint           `json:"student_id" gorm:"uniqueIndex:idx_exam_student;not null"`
	TenantID       uint           `json:"tenant_id" gorm:"index;not null"`
	AskedQuestions datatypes.JSON `json:"asked_questions"` // JSON array of question IDs asked this cycle
}

// AskedSet decodes the asked-question set. A corrupt value reads as empty.
func (p *ExamProgress) AskedSet() map[uint]bool {
	var ids []uint
	if err := json.Unmarshal(p.AskedQuestions, &ids); err != nil {
		return map[uint]bool{}
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// SetAsked encodes the given set back into the stored JSON array.
func (p *ExamProgress) SetAsked(set map[uint]bool) {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	raw, _ := json.Marshal(ids)
	p.AskedQuestions = raw
}
