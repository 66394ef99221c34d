package exam

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"examly/models"
	examModels "examly/models/exam"

	"gorm.io/gorm"
)

// Service drives the attempt lifecycle: not_started -> open -> submitted.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasAnswerKey reports whether every question of the exam has at least one
// correct choice. An exam with no questions has no answer key.
func (s *Service) HasAnswerKey(ex *examModels.Exam) (bool, error) {
	var total int64
	if err := s.db.Model(&examModels.Question{}).
		Where("exam_id = ? AND tenant_id = ?", ex.ID, ex.TenantID).
		Count(&total).Error; err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}

	var keyed int64
	subQuery := s.db.Model(&examModels.Question{}).
		Select("id").
		Where("exam_id = ? AND tenant_id = ?", ex.ID, ex.TenantID)
	if err := s.db.Model(&examModels.Choice{}).
		Where("is_correct = ? AND question_id IN (?)", true, subQuery).
		Distinct("question_id").
		Count(&keyed).Error; err != nil {
		return false, err
	}
	return keyed == total, nil
}

// Start returns the student's open attempt for the exam, creating one with a
// freshly drawn question order when none exists. Preconditions are reported
// as distinct business errors.
func (s *Service) Start(ex *examModels.Exam, student *models.User, now time.Time) (*examModels.Attempt, error) {
	if ex.IsDeleted {
		return nil, ErrDeleted
	}
	if ex.TenantID != student.TenantID {
		return nil, ErrForbidden
	}
	if student.Role != models.RoleAdmin {
		if student.InstructorID == nil || *student.InstructorID != ex.CreatedBy {
			return nil, ErrForbidden
		}
	}
	if now.Before(ex.StartAt) {
		return nil, ErrNotStarted
	}
	if ex.IsClosed {
		return nil, ErrClosed
	}
	ready, err := s.HasAnswerKey(ex)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrNotReady
	}

	limit := 0
	if ex.QuestionLimit != nil {
		limit = *ex.QuestionLimit
	}

	var attempt examModels.Attempt
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("exam_id = ? AND student_id = ? AND submitted_at IS NULL", ex.ID, student.ID).
			First(&attempt).Error
		if err == nil {
			// Resume the open attempt; the drawn order is never replaced.
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		selected, err := Draw(tx, ex, student.ID, limit)
		if err != nil {
			return err
		}
		order, err := json.Marshal(selected)
		if err != nil {
			return err
		}
		attempt = examModels.Attempt{
			ExamID:        ex.ID,
			StudentID:     student.ID,
			TenantID:      ex.TenantID,
			StartedAt:     now.UTC(),
			NumQuestions:  len(selected),
			QuestionOrder: order,
		}
		return tx.Create(&attempt).Error
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// GetAttempt loads an attempt for the given user. Cross-tenant or
// cross-student access reads as forbidden without leaking existence.
func (s *Service) GetAttempt(attemptID uint, user *models.User) (*examModels.Attempt, error) {
	var attempt examModels.Attempt
	if err := s.db.First(&attempt, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if attempt.StudentID != user.ID || attempt.TenantID != user.TenantID {
		return nil, ErrForbidden
	}
	return &attempt, nil
}

// QuestionAt resolves the 1-based position in the attempt's fixed order.
// Questions that moved tenant or exam read as not found.
func (s *Service) QuestionAt(attempt *examModels.Attempt, index int) (*examModels.Question, error) {
	order := attempt.OrderList()
	if index < 1 || index > len(order) {
		return nil, ErrNotFound
	}
	var question examModels.Question
	err := s.db.Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("id = ? AND exam_id = ? AND tenant_id = ?", order[index-1], attempt.ExamID, attempt.TenantID).
		First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Deadline is the instant the attempt's time budget runs out.
func Deadline(attempt *examModels.Attempt, ex *examModels.Exam) time.Time {
	return attempt.StartedAt.Add(time.Duration(ex.DurationMinutes) * time.Minute)
}

// TimeRemaining can be negative once the deadline has passed.
func TimeRemaining(attempt *examModels.Attempt, ex *examModels.Exam, now time.Time) time.Duration {
	return Deadline(attempt, ex).Sub(now)
}

// PerQuestionSeconds is the advisory per-question budget shown to students.
// It never gates progression; only the overall deadline does.
func PerQuestionSeconds(ex *examModels.Exam, questionCount int) int {
	if questionCount <= 0 {
		return 0
	}
	total := ex.DurationMinutes * 60
	per := total / questionCount
	if per < 1 {
		per = 1
	}
	return per
}

// SaveAnswers replaces all recorded answers for one question with the given
// selection in a single transaction. Choices not belonging to the question
// are dropped. No single/multiple arity check happens here; a type-mismatched
// selection simply cannot match the key at grading time.
func (s *Service) SaveAnswers(attempt *examModels.Attempt, question *examModels.Question, choiceIDs []uint) error {
	if attempt.IsSubmitted() {
		return ErrAlreadySubmitted
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ? AND question_id = ?", attempt.ID, question.ID).
			Delete(&examModels.Answer{}).Error; err != nil {
			return err
		}
		seen := make(map[uint]bool, len(choiceIDs))
		for _, choiceID := range choiceIDs {
			if seen[choiceID] {
				continue
			}
			seen[choiceID] = true
			var choice examModels.Choice
			err := tx.Where("id = ? AND question_id = ? AND tenant_id = ?", choiceID, question.ID, attempt.TenantID).
				First(&choice).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			answer := examModels.Answer{
				AttemptID:  attempt.ID,
				QuestionID: question.ID,
				ChoiceID:   choice.ID,
				TenantID:   attempt.TenantID,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SelectedChoiceIDs returns the currently recorded selection for one question.
func (s *Service) SelectedChoiceIDs(attemptID, questionID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&examModels.Answer{}).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Pluck("choice_id", &ids).Error
	return ids, err
}

// AnswersMap returns question ID -> selected choice IDs for a whole attempt.
func (s *Service) AnswersMap(attemptID uint) (map[uint][]uint, error) {
	var answers []examModels.Answer
	if err := s.db.Where("attempt_id = ?", attemptID).Find(&answers).Error; err != nil {
		return nil, err
	}
	result := make(map[uint][]uint)
	for _, ans := range answers {
		result[ans.QuestionID] = append(result[ans.QuestionID], ans.ChoiceID)
	}
	return result, nil
}

// Grade finalizes the attempt. A question counts as correct iff the submitted
// choice set is non-empty and exactly equals the correct set; an unanswered
// question is always wrong. Once submitted the score is frozen: repeated calls
// are no-ops, and concurrent calls are serialized by the submitted_at guard.
func (s *Service) Grade(attempt *examModels.Attempt, now time.Time) error {
	if attempt.IsSubmitted() {
		return nil
	}

	order := attempt.OrderList()
	correctCount := 0
	for _, qid := range order {
		var question examModels.Question
		err := s.db.Where("id = ? AND tenant_id = ?", qid, attempt.TenantID).First(&question).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		var correctIDs []uint
		if err := s.db.Model(&examModels.Choice{}).
			Where("question_id = ? AND is_correct = ? AND tenant_id = ?", question.ID, true, attempt.TenantID).
			Pluck("id", &correctIDs).Error; err != nil {
			return err
		}
		givenIDs, err := s.SelectedChoiceIDs(attempt.ID, question.ID)
		if err != nil {
			return err
		}
		if len(givenIDs) > 0 && sameIDSet(givenIDs, correctIDs) {
			correctCount++
		}
	}

	total := len(order)
	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(correctCount)/float64(total)*100*100) / 100
	}
	submittedAt := now.UTC()

	// Guard on submitted_at IS NULL: the first finalizer wins, retries and
	// concurrent grades leave the stored score untouched.
	res := s.db.Model(&examModels.Attempt{}).
		Where("id = ? AND submitted_at IS NULL", attempt.ID).
		Updates(map[string]interface{}{
			"num_correct":   correctCount,
			"num_questions": total,
			"score_percent": percent,
			"submitted_at":  submittedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		attempt.NumCorrect = &correctCount
		attempt.NumQuestions = total
		attempt.ScorePercent = &percent
		attempt.SubmittedAt = &submittedAt
		return nil
	}

	// Lost the race: reload the finalized state.
	return s.db.First(attempt, attempt.ID).Error
}

// sameIDSet compares as sets; duplicate IDs on either side collapse.
func sameIDSet(a, b []uint) bool {
	setA := make(map[uint]bool, len(a))
	for _, id := range a {
		setA[id] = true
	}
	setB := make(map[uint]bool, len(b))
	for _, id := range b {
		setB[id] = true
	}
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if !setB[id] {
			return false
		}
	}
	return true
}
