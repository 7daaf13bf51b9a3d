package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const attemptsSheet = "Attempts"

var attemptExportHeaders = []string{
	"Timestamp", "Type", "Mode", "Score %", "Correctness", "Clarity", "Structure",
	"Strengths", "Weaknesses", "Answered",
}

// ExportAttempts writes the user's attempts to an xlsx workbook, newest first
func (s *progressService) ExportAttempts(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]byte, error) {
	filters = filters.Normalize()

	attempts, _, err := s.attempts.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), attemptsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for i, header := range attemptExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(attemptsSheet, cell, header)
	}

	for rowIndex, attempt := range attempts {
		for colIndex, value := range attemptToRow(attempt) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(attemptsSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Logger().Info("Exported interview attempts", "user_id", userID, "rows", len(attempts))
	return buf.Bytes(), nil
}

func attemptToRow(a *models.InterviewAttempt) []interface{} {
	row := []interface{}{
		a.Timestamp.UTC().Format(time.RFC3339),
		a.Type,
		a.Mode,
		"",
		"", "", "",
		"", "",
		0,
	}
	if a.ScorePercent != nil {
		row[3] = *a.ScorePercent
	}

	var report interview.Report
	if len(a.Report) > 0 && json.Unmarshal(a.Report, &report) == nil {
		row[4] = report.Scores.Correctness
		row[5] = report.Scores.Clarity
		row[6] = report.Scores.Structure
		row[7] = joinDimensions(report.Strengths)
		row[8] = joinDimensions(report.Weaknesses)
	}

	var answers interview.Answers
	if len(a.Answers) > 0 && json.Unmarshal(a.Answers, &answers) == nil {
		row[9] = len(answers)
	}

	return row
}

func joinDimensions(ds []interview.Dimension) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
