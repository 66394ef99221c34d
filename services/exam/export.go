package exam

import (
	"fmt"

	examModels "examly/models/exam"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Questions"

// exportHeader builds the fixed 6-option-wide export header.
func exportHeader() []interface{} {
	header := []interface{}{"Question", "QuestionImage", "Type"}
	for i := 1; i <= MaxOptions; i++ {
		header = append(header, fmt.Sprintf("Option%d", i), fmt.Sprintf("Option%dImage", i))
	}
	return append(header, "Correct", "Reason")
}

// BuildExamWorkbook renders an exam's questions into a workbook that the
// parser accepts back unchanged (round trip up to column padding).
// Questions must have their Choices loaded, in storage order.
func BuildExamWorkbook(questions []examModels.Question) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := exportHeader()
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, q := range questions {
		row := []interface{}{q.Text, q.ImagePath, q.QType}
		for j := 0; j < MaxOptions; j++ {
			if j < len(q.Choices) {
				row = append(row, q.Choices[j].Text, q.Choices[j].ImagePath)
			} else {
				row = append(row, "", "")
			}
		}
		row = append(row, correctLetters(q.Choices), q.Reason)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// correctLetters re-encodes choice correctness as comma-joined letters
// (A for the first choice, B for the second, ...).
func correctLetters(choices []examModels.Choice) string {
	letters := ""
	for i, c := range choices {
		if !c.IsCorrect || i >= 26 {
			continue
		}
		if letters != "" {
			letters += ","
		}
		letters += string(rune('A' + i))
	}
	return letters
}

// BuildTemplateWorkbook produces the downloadable import template with two
// sample rows.
func BuildTemplateWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := exportHeader()
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	samples := [][]interface{}{
		{"What is 2+2?", "", "single", "2", "", "3", "", "4", "", "5", "", "", "", "", "", "C", "Basic arithmetic."},
		{"Select prime numbers", "", "multiple", "2", "", "3", "", "4", "", "9", "", "11", "", "15", "", "A,E", "2 and 11 are prime."},
	}
	for i, sample := range samples {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &sample); err != nil {
			return nil, err
		}
	}
	return f, nil
}
