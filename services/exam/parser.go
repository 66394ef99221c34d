package exam

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	examModels "examly/models/exam"

	"github.com/xuri/excelize/v2"
)

// MaxOptions is the widest supported option set per question.
const MaxOptions = 6

// OptionDef is one answer option parsed from a spreadsheet row.
type OptionDef struct {
	Text      string `json:"text"`
	ImagePath string `json:"image_path"`
}

// QuestionDef is the canonical parsed form of one question, either from a
// spreadsheet row or the manual add/edit form.
type QuestionDef struct {
	Text            string      `json:"text"`
	QType           string      `json:"qtype"` // single or multiple
	Options         []OptionDef `json:"options"`
	Correct         []int       `json:"correct"` // 0-based option indices
	Reason          string      `json:"reason"`
	ImagePath       string      `json:"image_path"`
	ReasonImagePath string      `json:"reason_image_path"`
}

var (
	optionImageHeaderRe = regexp.MustCompile(`^option(\d+).*image`)
	optionTextHeaderRe  = regexp.MustCompile(`^option(\d+)`)
	optionColRe         = regexp.MustCompile(`^option(\d+)$`)
	optionImageColRe    = regexp.MustCompile(`^option(\d+)_image$`)
)

// classifyHeader maps a raw header cell onto its canonical column name.
// Unrecognized headers pass through normalized so they can never collide
// with a canonical name by accident.
func classifyHeader(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(h, "question") && strings.Contains(h, "image"):
		return "question_image"
	case strings.HasPrefix(h, "question"):
		return "question"
	case strings.HasPrefix(h, "type"):
		return "type"
	case strings.HasPrefix(h, "option"):
		compact := strings.ReplaceAll(h, " ", "")
		if m := optionImageHeaderRe.FindStringSubmatch(compact); m != nil {
			return "option" + m[1] + "_image"
		}
		if m := optionTextHeaderRe.FindStringSubmatch(compact); m != nil {
			return "option" + m[1]
		}
		return ""
	case strings.HasPrefix(h, "correct"):
		return "correct"
	case strings.HasPrefix(h, "reason"):
		return "reason"
	}
	return h
}

// cellAt reads a cell by column index, tolerating short rows.
func cellAt(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// ParseQuestionsFromExcel parses an uploaded workbook into question
// definitions. Row 1 is the header; columns are discovered by name, not
// position. All failures are ValidationErrors with user-facing messages.
func ParseQuestionsFromExcel(data []byte) ([]QuestionDef, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, validationErrorf("The uploaded file is not a readable Excel workbook.")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, validationErrorf("The uploaded workbook has no sheets.")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		return nil, validationErrorf("The uploaded workbook is empty.")
	}

	canonical := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		canonical[i] = classifyHeader(h)
	}

	// First occurrence of a canonical name wins.
	idx := make(map[string]int)
	for i, name := range canonical {
		if name == "" {
			continue
		}
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	for _, required := range []string{"question", "type", "option1", "option2"} {
		if _, ok := idx[required]; !ok {
			return nil, validationErrorf("Invalid template. Please download the provided template to prepare your Excel file.")
		}
	}
	_, hasCorrect := idx["correct"]
	_, hasReason := idx["reason"]

	optionCols := optionColumns(canonical)
	if len(optionCols) < 2 {
		return nil, validationErrorf("At least two options are required (Option1, Option2).")
	}
	if len(optionCols) > MaxOptions {
		return nil, validationErrorf("Only up to %d options are supported.", MaxOptions)
	}

	var questions []QuestionDef
	for _, row := range rows[1:] {
		text := cellAt(row, idx["question"])
		if text == "" {
			continue
		}

		qtype := examModels.TypeSingle
		if strings.Contains(strings.ToLower(cellAt(row, idx["type"])), "multi") {
			qtype = examModels.TypeMultiple
		}

		imagePath := ""
		if col, ok := idx["question_image"]; ok {
			imagePath = cellAt(row, col)
		}

		options, err := rowOptions(row, idx, optionCols, text)
		if err != nil {
			return nil, err
		}

		var correct []int
		if hasCorrect {
			correct = parseCorrectLetters(cellAt(row, idx["correct"]), len(options))
		}

		reason := ""
		if hasReason {
			reason = cellAt(row, idx["reason"])
		}

		questions = append(questions, QuestionDef{
			Text:      text,
			QType:     qtype,
			Options:   options,
			Correct:   correct,
			Reason:    reason,
			ImagePath: imagePath,
		})
	}

	if len(questions) == 0 {
		return nil, validationErrorf("No questions found in the uploaded Excel file.")
	}
	return questions, nil
}

// optionColumns returns the option numbers present in the header,
// ascending.
func optionColumns(canonical []string) []int {
	var numbers []int
	for _, name := range canonical {
		if m := optionColRe.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers
}

// rowOptions builds the option list for one row: trailing fully-empty
// options are trimmed, an image without text and any interior gap are
// validation errors naming the offending question.
func rowOptions(row []string, idx map[string]int, optionCols []int, questionText string) ([]OptionDef, error) {
	var options []OptionDef
	for _, n := range optionCols {
		text := cellAt(row, idx[fmt.Sprintf("option%d", n)])
		image := ""
		if col, ok := idx[fmt.Sprintf("option%d_image", n)]; ok {
			image = cellAt(row, col)
		}
		if image != "" && text == "" {
			return nil, validationErrorf("Question '%s' has an image for option %d but no text.", questionText, n)
		}
		options = append(options, OptionDef{Text: text, ImagePath: image})
	}

	for len(options) > 0 && options[len(options)-1].Text == "" && options[len(options)-1].ImagePath == "" {
		options = options[:len(options)-1]
	}
	if len(options) < 2 {
		return nil, validationErrorf("Question '%s' must have at least two options.", questionText)
	}
	for _, opt := range options {
		if opt.Text == "" {
			return nil, validationErrorf("Question '%s' has empty option gaps. Please fill options without gaps.", questionText)
		}
	}
	return options, nil
}

// parseCorrectLetters decodes a comma-separated letter list (A, B, ...)
// into 0-based option indices. Out-of-range letters are silently dropped.
func parseCorrectLetters(raw string, optionCount int) []int {
	if raw == "" {
		return nil
	}
	cleaned := strings.ToUpper(strings.ReplaceAll(raw, " ", ""))
	var indices []int
	for _, part := range strings.Split(cleaned, ",") {
		if len(part) != 1 || part[0] < 'A' || part[0] > 'Z' {
			continue
		}
		i := int(part[0] - 'A')
		if i < optionCount {
			indices = append(indices, i)
		}
	}
	return indices
}
