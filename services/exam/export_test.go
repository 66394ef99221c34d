package exam

import (
	"testing"

	examModels "examly/models/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	questions := []examModels.Question{
		{
			Text:   "What is 2+2?",
			QType:  examModels.TypeSingle,
			Reason: "Basic arithmetic.",
			Choices: []examModels.Choice{
				{Text: "3"},
				{Text: "4", IsCorrect: true},
			},
		},
		{
			Text:  "Select primes",
			QType: examModels.TypeMultiple,
			Choices: []examModels.Choice{
				{Text: "2", IsCorrect: true},
				{Text: "4"},
				{Text: "5", IsCorrect: true},
			},
		},
	}

	f, err := BuildExamWorkbook(questions)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	parsed, err := ParseQuestionsFromExcel(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, "What is 2+2?", parsed[0].Text)
	assert.Equal(t, examModels.TypeSingle, parsed[0].QType)
	require.Len(t, parsed[0].Options, 2)
	assert.Equal(t, []int{1}, parsed[0].Correct)
	assert.Equal(t, "Basic arithmetic.", parsed[0].Reason)

	assert.Equal(t, examModels.TypeMultiple, parsed[1].QType)
	require.Len(t, parsed[1].Options, 3)
	assert.Equal(t, []int{0, 2}, parsed[1].Correct)
}

func TestCorrectLetters(t *testing.T) {
	choices := []examModels.Choice{
		{IsCorrect: true},
		{},
		{IsCorrect: true},
	}
	assert.Equal(t, "A,C", correctLetters(choices))
	assert.Equal(t, "", correctLetters(nil))
}

func TestTemplateWorkbookParses(t *testing.T) {
	f, err := BuildTemplateWorkbook()
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	parsed, err := ParseQuestionsFromExcel(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, examModels.TypeSingle, parsed[0].QType)
	assert.Equal(t, examModels.TypeMultiple, parsed[1].QType)
	assert.Equal(t, []int{2}, parsed[0].Correct)
	assert.Equal(t, []int{0, 4}, parsed[1].Correct)
}
