package exam

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"examly/models"
	examModels "examly/models/exam"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an isolated in-memory database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&examModels.Exam{},
		&examModels.Question{},
		&examModels.Choice{},
		&examModels.Attempt{},
		&examModels.Answer{},
		&examModels.ExamProgress{},
		&examModels.ExamDeletionLog{},
	))
	return db
}

type fixture struct {
	Tenant     models.Tenant
	Instructor models.User
	Student    models.User
	Exam       examModels.Exam
}

// newFixture seeds one tenant, an instructor, a bound student, and an exam
// that started an hour ago and runs for 60 minutes.
func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	fx := &fixture{}
	fx.Tenant = models.Tenant{Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(&fx.Tenant).Error)

	fx.Instructor = models.User{
		Username: "teach",
		Role:     models.RoleInstructor,
		Password: "x",
		TenantID: fx.Tenant.ID,
	}
	require.NoError(t, db.Create(&fx.Instructor).Error)

	fx.Student = models.User{
		Username:     "alice",
		Role:         models.RoleStudent,
		Password:     "x",
		TenantID:     fx.Tenant.ID,
		InstructorID: &fx.Instructor.ID,
	}
	require.NoError(t, db.Create(&fx.Student).Error)

	now := time.Now().UTC()
	fx.Exam = examModels.Exam{
		Title:           "Midterm",
		StartAt:         now.Add(-time.Hour),
		EndAt:           now.Add(time.Hour),
		DurationMinutes: 60,
		Timezone:        "UTC",
		CreatedBy:       fx.Instructor.ID,
		TenantID:        fx.Tenant.ID,
	}
	require.NoError(t, db.Create(&fx.Exam).Error)
	return fx
}

// addQuestion creates one question with the given option texts; correct
// holds 0-based indices of the keyed options.
func addQuestion(t *testing.T, db *gorm.DB, ex *examModels.Exam, qtype string, options []string, correct []int) examModels.Question {
	t.Helper()

	question := examModels.Question{
		ExamID:   ex.ID,
		Text:     fmt.Sprintf("Q%d", time.Now().UnixNano()),
		QType:    qtype,
		TenantID: ex.TenantID,
	}
	require.NoError(t, db.Create(&question).Error)

	correctSet := make(map[int]bool, len(correct))
	for _, i := range correct {
		correctSet[i] = true
	}
	for i, text := range options {
		choice := examModels.Choice{
			QuestionID: question.ID,
			Text:       text,
			IsCorrect:  correctSet[i],
			TenantID:   ex.TenantID,
		}
		require.NoError(t, db.Create(&choice).Error)
		question.Choices = append(question.Choices, choice)
	}
	return question
}
