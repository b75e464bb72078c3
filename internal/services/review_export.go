package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const reviewSheet = "Review"

// ExportReviewToExcel writes the review as a single-sheet workbook
func ExportReviewToExcel(review *Review) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reviewSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	title := fmt.Sprintf("%s (submission %d): %d of %d answered",
		review.Title, review.SubmissionID, review.Answered, review.Total)
	if err := f.SetCellValue(reviewSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}

	headers := []string{"#", "Question", "Type", "Answer", "Answered"}
	if err := writeRow(f, 2, headers); err != nil {
		return nil, err
	}

	for i, item := range review.Items {
		prompt := item.Prompt
		if item.Header != "" {
			prompt = item.Header + "\n" + item.Prompt
		}
		row := []interface{}{item.Number, prompt, string(item.Type), item.Answer, item.Answered}
		if err := writeRow(f, i+3, row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(reviewSheet, "B", "B", 60); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(reviewSheet, "D", "D", 40); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow[T any](f *excelize.File, row int, values []T) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(reviewSheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
