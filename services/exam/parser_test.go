package exam

import (
	"testing"

	examModels "examly/models/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseBasicSingleQuestion(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option2", "Correct"},
		{"What is 2+2?", "single", "2", "4", "B"},
	})

	questions, err := ParseQuestionsFromExcel(data)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "What is 2+2?", q.Text)
	assert.Equal(t, examModels.TypeSingle, q.QType)
	require.Len(t, q.Options, 2)
	assert.Equal(t, "2", q.Options[0].Text)
	assert.Equal(t, "4", q.Options[1].Text)
	assert.Equal(t, []int{1}, q.Correct)
}

func TestParseHeaderVariants(t *testing.T) {
	// Annotated and spaced headers classify onto the same canonical columns.
	data := workbookBytes(t, [][]interface{}{
		{"Question (text)", "Question Image", "Type (single/multiple)", "Option 1", "Option 1 Image", "Option 2", "Correct (A,B,...)", "Reason"},
		{"Pick one", "img.png", "single", "yes", "opt.png", "no", "A", "Because."},
	})

	questions, err := ParseQuestionsFromExcel(data)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "img.png", q.ImagePath)
	assert.Equal(t, "opt.png", q.Options[0].ImagePath)
	assert.Equal(t, []int{0}, q.Correct)
	assert.Equal(t, "Because.", q.Reason)
}

func TestParseMissingRequiredHeader(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Option1", "Option2"},
		{"No type column", "a", "b"},
	})

	_, err := ParseQuestionsFromExcel(data)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "Invalid template")
}

func TestParseTypeClassification(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option2", "Correct"},
		{"Q1", "Multiple Choice", "a", "b", "A,B"},
		{"Q2", "whatever", "a", "b", "A"},
	})

	questions, err := ParseQuestionsFromExcel(data)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, examModels.TypeMultiple, questions[0].QType)
	assert.Equal(t, examModels.TypeSingle, questions[1].QType)
}

func TestParseSkipsRowsWithoutQuestionText(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option2", "Correct"},
		{"", "single", "a", "b", "A"},
		{"Real question", "single", "a", "b", "A"},
	})

	questions, err := ParseQuestionsFromExcel(data)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Real question", questions[0].Text)
}

func TestParseNoQuestionsFound(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option2", "Correct"},
	})

	_, err := ParseQuestionsFromExcel(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No questions found")
}

func TestParseTrailingEmptyOptionsTrimmed(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option2", "Option3", "Option4", "Correct"},
		{"Q", "single", "a", "b", "", "", "A"},
	})

	questions, err := ParseQuestionsFromExcel(data)
	require.NoError(t, err)
	require.Len(t, questions[0].Options, 2)
}

func TestParseOptionGapRejected(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option2", "Option3", "Correct"},
		{"Gappy", "single", "a", "", "c", "A"},
	})

	_, err := ParseQuestionsFromExcel(data)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "Gappy")
	assert.Contains(t, err.Error(), "gaps")
}

func TestParseImageWithoutTextRejected(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option1Image", "Option2", "Correct"},
		{"Q", "single", "", "pic.png", "b", "A"},
	})

	_, err := ParseQuestionsFromExcel(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image for option 1")
}

func TestParseTooManyOptionColumns(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"Question", "Type", "Option1", "Option2", "Option3", "Option4", "Option5", "Option6", "Option7", "Correct"},
		{"Q", "single", "a", "b", "c", "d", "e", "f", "g", "A"},
	})

	_, err := ParseQuestionsFromExcel(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "up to 6 options")
}

func TestParseCorrectLetters(t *testing.T) {
	assert.Equal(t, []int{0, 2}, parseCorrectLetters("a, c", 4))
	assert.Equal(t, []int{1}, parseCorrectLetters("B", 2))
	// Letters past the option count are dropped.
	assert.Equal(t, []int{0}, parseCorrectLetters("A,E", 2))
	assert.Nil(t, parseCorrectLetters("", 4))
	assert.Nil(t, parseCorrectLetters("AB,12", 4))
}

func TestParseNotAWorkbook(t *testing.T) {
	_, err := ParseQuestionsFromExcel([]byte("plain text"))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
