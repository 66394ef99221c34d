package exam

import (
	"testing"

	examModels "examly/models/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuestionsPersistsDefinitions(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)

	defs := []QuestionDef{
		{
			Text:    "Capital of France?",
			QType:   examModels.TypeSingle,
			Options: []OptionDef{{Text: "Paris"}, {Text: "Lyon"}},
			Correct: []int{0},
			Reason:  "Paris has been the capital since 987.",
		},
		{
			Text:    "Even numbers?",
			QType:   examModels.TypeMultiple,
			Options: []OptionDef{{Text: "1"}, {Text: "2"}, {Text: "4"}},
			Correct: []int{1, 2},
		},
	}
	require.NoError(t, CreateQuestions(db, &fx.Exam, defs))

	questions, err := ExamQuestions(db, &fx.Exam)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, "Capital of France?", questions[0].Text)
	assert.Equal(t, fx.Tenant.ID, questions[0].TenantID)
	require.Len(t, questions[0].Choices, 2)
	assert.True(t, questions[0].Choices[0].IsCorrect)
	assert.False(t, questions[0].Choices[1].IsCorrect)

	require.Len(t, questions[1].Choices, 3)
	assert.False(t, questions[1].Choices[0].IsCorrect)
	assert.True(t, questions[1].Choices[1].IsCorrect)
	assert.True(t, questions[1].Choices[2].IsCorrect)
}

func TestCreateQuestionsEmptyDefsIsNoop(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)

	require.NoError(t, CreateQuestions(db, &fx.Exam, nil))

	questions, err := ExamQuestions(db, &fx.Exam)
	require.NoError(t, err)
	assert.Empty(t, questions)
}
