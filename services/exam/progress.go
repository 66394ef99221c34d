package exam

import (
	"errors"
	"math/rand"

	examModels "examly/models/exam"

	"gorm.io/gorm"
)

// Draw picks the question order for a new attempt. Questions already asked in
// the current cycle are excluded until the pool is exhausted, then the cycle
// resets. The returned slice is the final attempt order: shuffled once here,
// never re-shuffled afterwards. Runs inside the caller's transaction.
func Draw(db *gorm.DB, ex *examModels.Exam, studentID uint, limit int) ([]uint, error) {
	var pool []uint
	if err := db.Model(&examModels.Question{}).
		Where("exam_id = ? AND tenant_id = ?", ex.ID, ex.TenantID).
		Order("id asc").
		Pluck("id", &pool).Error; err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	var progress examModels.ExamProgress
	err := db.Where("exam_id = ? AND student_id = ?", ex.ID, studentID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = examModels.ExamProgress{
			ExamID:         ex.ID,
			StudentID:      studentID,
			TenantID:       ex.TenantID,
			AskedQuestions: []byte("[]"),
		}
		if err := db.Create(&progress).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	asked := progress.AskedSet()
	if len(asked) >= len(pool) {
		// Full coverage reached: new cycle.
		asked = map[uint]bool{}
	}

	available := make([]uint, 0, len(pool))
	for _, id := range pool {
		if !asked[id] {
			available = append(available, id)
		}
	}
	if len(available) == 0 {
		asked = map[uint]bool{}
		available = append(available, pool...)
	}

	rand.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	selected := available
	if limit > 0 && limit < len(available) {
		selected = available[:limit]
	}
	if len(selected) == 0 {
		return nil, ErrEmptyPool
	}

	for _, id := range selected {
		asked[id] = true
	}
	progress.SetAsked(asked)
	if err := db.Save(&progress).Error; err != nil {
		return nil, err
	}

	return selected, nil
}
