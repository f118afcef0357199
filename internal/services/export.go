package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eztechnick/exam-portal/internal/models"
)

// Export is a ready-to-serve results file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

var exportHeader = []string{"ID", "Timestamp", "Student Name", "Subject", "Score", "Total Points", "Status"}

// ExportResults renders the stored results for download. CSV and xlsx carry
// the same columns; raw answers stay out of the export, they are reviewed
// in-app.
func (s *adminService) ExportResults(ctx context.Context, subject, format string) (*Export, error) {
	results, err := s.Results(ctx, subject)
	if err != nil {
		return nil, err
	}

	stem := "results"
	if subject != "" {
		stem = "results-" + strings.ReplaceAll(strings.ToLower(subject), " ", "-")
	}
	stem = fmt.Sprintf("%s-%s", stem, s.now().Format("20060102"))

	switch strings.ToLower(format) {
	case "csv":
		data, err := renderResultsCSV(results)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    stem + ".csv",
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "xlsx", "":
		data, err := renderResultsExcel(results)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    stem + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func renderResultsCSV(results []models.ExamResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.ID,
			r.Timestamp,
			r.StudentName,
			r.Subject,
			formatPoints(r.Score),
			formatPoints(r.TotalPoints),
			string(r.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func renderResultsExcel(results []models.ExamResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, r := range results {
		values := []any{r.ID, r.Timestamp, r.StudentName, r.Subject, r.Score, r.TotalPoints, string(r.Status)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
