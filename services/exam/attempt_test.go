package exam

import (
	"testing"
	"time"

	"examly/models"
	examModels "examly/models/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedKeyedQuestions seeds a ready exam: a single-choice question keyed on
// its first option and a multiple-choice question keyed on two of three.
func seedKeyedQuestions(t *testing.T, svc *Service, fx *fixture) (examModels.Question, examModels.Question) {
	t.Helper()
	q1 := addQuestion(t, svc.db, &fx.Exam, examModels.TypeSingle, []string{"red", "blue"}, []int{0})
	q2 := addQuestion(t, svc.db, &fx.Exam, examModels.TypeMultiple, []string{"2", "4", "5"}, []int{0, 2})
	return q1, q2
}

func TestHasAnswerKey(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)

	ready, err := svc.HasAnswerKey(&fx.Exam)
	require.NoError(t, err)
	assert.False(t, ready, "an exam without questions has no key")

	addQuestion(t, db, &fx.Exam, examModels.TypeSingle, []string{"a", "b"}, []int{0})
	unkeyed := addQuestion(t, db, &fx.Exam, examModels.TypeSingle, []string{"a", "b"}, nil)

	ready, err = svc.HasAnswerKey(&fx.Exam)
	require.NoError(t, err)
	assert.False(t, ready, "one unkeyed question blocks readiness")

	require.NoError(t, db.Model(&examModels.Choice{}).
		Where("question_id = ? AND text = ?", unkeyed.ID, "a").
		Update("is_correct", true).Error)

	ready, err = svc.HasAnswerKey(&fx.Exam)
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestStartPreconditions(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	t.Run("deleted exam", func(t *testing.T) {
		deleted := fx.Exam
		deleted.IsDeleted = true
		_, err := svc.Start(&deleted, &fx.Student, now)
		assert.ErrorIs(t, err, ErrDeleted)
	})

	t.Run("cross tenant", func(t *testing.T) {
		outsider := fx.Student
		outsider.TenantID = fx.Student.TenantID + 1
		_, err := svc.Start(&fx.Exam, &outsider, now)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unbound student", func(t *testing.T) {
		unbound := fx.Student
		unbound.InstructorID = nil
		_, err := svc.Start(&fx.Exam, &unbound, now)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("before start", func(t *testing.T) {
		early := fx.Exam
		early.StartAt = now.Add(time.Hour)
		_, err := svc.Start(&early, &fx.Student, now)
		assert.ErrorIs(t, err, ErrNotStarted)
	})

	t.Run("closed", func(t *testing.T) {
		closed := fx.Exam
		closed.IsClosed = true
		_, err := svc.Start(&closed, &fx.Student, now)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestStartRequiresAnswerKey(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)

	addQuestion(t, db, &fx.Exam, examModels.TypeSingle, []string{"a", "b"}, nil)

	_, err := svc.Start(&fx.Exam, &fx.Student, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestStartResumesOpenAttempt(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	first, err := svc.Start(&fx.Exam, &fx.Student, now)
	require.NoError(t, err)

	second, err := svc.Start(&fx.Exam, &fx.Student, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.QuestionOrder, second.QuestionOrder)
}

func TestGradeExactSetMatch(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	q1, q2 := seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	attempt, err := svc.Start(&fx.Exam, &fx.Student, now)
	require.NoError(t, err)
	require.Equal(t, 2, attempt.NumQuestions)

	require.NoError(t, svc.SaveAnswers(attempt, &q1, []uint{q1.Choices[0].ID}))
	require.NoError(t, svc.SaveAnswers(attempt, &q2, []uint{q2.Choices[0].ID, q2.Choices[2].ID}))

	require.NoError(t, svc.Grade(attempt, now.Add(10*time.Minute)))
	require.NotNil(t, attempt.ScorePercent)
	assert.Equal(t, 100.0, *attempt.ScorePercent)
	assert.Equal(t, 2, *attempt.NumCorrect)
	assert.True(t, attempt.IsSubmitted())
}

func TestGradePartialSelectionIsWrong(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	q1, q2 := seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	attempt, err := svc.Start(&fx.Exam, &fx.Student, now)
	require.NoError(t, err)

	// Q1 correct; Q2 a strict subset of the key, which scores zero.
	require.NoError(t, svc.SaveAnswers(attempt, &q1, []uint{q1.Choices[0].ID}))
	require.NoError(t, svc.SaveAnswers(attempt, &q2, []uint{q2.Choices[0].ID}))

	require.NoError(t, svc.Grade(attempt, now.Add(time.Minute)))
	assert.Equal(t, 1, *attempt.NumCorrect)
	assert.Equal(t, 50.0, *attempt.ScorePercent)
}

func TestGradeUnansweredIsWrong(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	attempt, err := svc.Start(&fx.Exam, &fx.Student, now)
	require.NoError(t, err)

	require.NoError(t, svc.Grade(attempt, now))
	assert.Equal(t, 0, *attempt.NumCorrect)
	assert.Equal(t, 0.0, *attempt.ScorePercent)
}

func TestGradeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	q1, _ := seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	attempt, err := svc.Start(&fx.Exam, &fx.Student, now)
	require.NoError(t, err)

	require.NoError(t, svc.Grade(attempt, now))
	firstSubmit := *attempt.SubmittedAt
	firstScore := *attempt.ScorePercent

	// Late answers and repeated grading leave the frozen result untouched.
	err = svc.SaveAnswers(attempt, &q1, []uint{q1.Choices[0].ID})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	require.NoError(t, svc.Grade(attempt, now.Add(time.Hour)))
	assert.Equal(t, firstSubmit, *attempt.SubmittedAt)
	assert.Equal(t, firstScore, *attempt.ScorePercent)
}

func TestSaveAnswersReplacesSelection(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	q1, q2 := seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	attempt, err := svc.Start(&fx.Exam, &fx.Student, now)
	require.NoError(t, err)

	require.NoError(t, svc.SaveAnswers(attempt, &q1, []uint{q1.Choices[1].ID}))
	require.NoError(t, svc.SaveAnswers(attempt, &q1, []uint{q1.Choices[0].ID}))

	selected, err := svc.SelectedChoiceIDs(attempt.ID, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{q1.Choices[0].ID}, selected)

	// Choices from another question and duplicates are dropped.
	require.NoError(t, svc.SaveAnswers(attempt, &q1, []uint{q1.Choices[0].ID, q1.Choices[0].ID, q2.Choices[0].ID}))
	selected, err = svc.SelectedChoiceIDs(attempt.ID, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{q1.Choices[0].ID}, selected)
}

func TestQuestionAtBounds(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	seedKeyedQuestions(t, svc, fx)
	now := time.Now().UTC()

	attempt, err := svc.Start(&fx.Exam, &fx.Student, now)
	require.NoError(t, err)

	q, err := svc.QuestionAt(attempt, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, q.Choices)

	_, err = svc.QuestionAt(attempt, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.QuestionAt(attempt, attempt.NumQuestions+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAttemptAccess(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)
	seedKeyedQuestions(t, svc, fx)

	attempt, err := svc.Start(&fx.Exam, &fx.Student, time.Now().UTC())
	require.NoError(t, err)

	got, err := svc.GetAttempt(attempt.ID, &fx.Student)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, got.ID)

	other := models.User{
		Username: "bob",
		Role:     models.RoleStudent,
		Password: "x",
		TenantID: fx.Tenant.ID,
	}
	require.NoError(t, db.Create(&other).Error)
	_, err = svc.GetAttempt(attempt.ID, &other)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetAttempt(attempt.ID+999, &fx.Student)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGradeWithCorruptOrder(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)
	svc := NewService(db)

	attempt := examModels.Attempt{
		ExamID:        fx.Exam.ID,
		StudentID:     fx.Student.ID,
		TenantID:      fx.Tenant.ID,
		StartedAt:     time.Now().UTC(),
		QuestionOrder: []byte("not json"),
	}
	require.NoError(t, db.Create(&attempt).Error)

	require.NoError(t, svc.Grade(&attempt, time.Now().UTC()))
	assert.Equal(t, 0, attempt.NumQuestions)
	assert.Equal(t, 0.0, *attempt.ScorePercent)
	assert.True(t, attempt.IsSubmitted())
}

func TestDeadlineAndBudget(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &examModels.Attempt{StartedAt: started}
	ex := &examModels.Exam{DurationMinutes: 30}

	assert.Equal(t, started.Add(30*time.Minute), Deadline(attempt, ex))
	assert.Equal(t, 10*time.Minute, TimeRemaining(attempt, ex, started.Add(20*time.Minute)))
	assert.Negative(t, TimeRemaining(attempt, ex, started.Add(time.Hour)))

	assert.Equal(t, 180, PerQuestionSeconds(ex, 10))
	assert.Equal(t, 1, PerQuestionSeconds(&examModels.Exam{DurationMinutes: 1}, 100))
	assert.Equal(t, 0, PerQuestionSeconds(ex, 0))
}
