package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/progress"
	"github.com/GregMSThompson/imihigo-backend/pkg/logger"
)

const (
	summarySheet = "Summary"
	monthlySheet = "Monthly"
	subSheet     = "Sub-indicators"
)

type progressSource interface {
	QuarterProgress(ctx context.Context, indicatorID, quarterID string) (dto.QuarterProgressResponse, error)
	AnnualProgress(ctx context.Context, indicatorID string) (dto.AnnualProgressResponse, error)
}

type reportService struct {
	progress progressSource
}

func NewReportService(progress progressSource) *reportService {
	return &reportService{progress: progress}
}

// QuarterReport renders the quarter progress of an indicator as an .xlsx
// workbook and returns its file name and contents.
func (s *reportService) QuarterReport(ctx context.Context, indicatorID, quarterID string) (string, []byte, error) {
	log := logger.FromContext(ctx)

	qp, err := s.progress.QuarterProgress(ctx, indicatorID, quarterID)
	if err != nil {
		return "", nil, err
	}
	annual, err := s.progress.AnnualProgress(ctx, indicatorID)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", nil, errs.NewReportError("failed to prepare workbook", err)
	}
	if err := writeSummary(f, qp, annual); err != nil {
		return "", nil, errs.NewReportError("failed to write summary sheet", err)
	}
	if err := writeMonthly(f, qp); err != nil {
		return "", nil, errs.NewReportError("failed to write monthly sheet", err)
	}
	if len(qp.SubIndicatorDetails) > 0 {
		if err := writeSubIndicators(f, qp.SubIndicatorDetails); err != nil {
			return "", nil, errs.NewReportError("failed to write sub-indicator sheet", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", nil, errs.NewReportError("failed to serialise workbook", err)
	}

	name := fmt.Sprintf("imihigo-indicator-%s-%s.xlsx", sanitizeFilePart(indicatorID), sanitizeFilePart(quarterID))
	log.Info("quarter report generated", "indicator_id", indicatorID, "quarter_id", quarterID, "bytes", buf.Len())
	return name, buf.Bytes(), nil
}

func writeSummary(f *excelize.File, qp dto.QuarterProgressResponse, annual dto.AnnualProgressResponse) error {
	next := "-"
	if qp.NextTarget != nil {
		next = fmt.Sprintf("%g", *qp.NextTarget)
	}
	rows := [][]any{
		{"Indicator", qp.IndicatorName},
		{"Quarter", qp.QuarterName},
		{"Target", qp.Target},
		{"Actual", qp.TotalActual},
		{"Quarter performance (%)", round2(qp.Performance)},
		{"Performance band", string(qp.Band)},
		{"Trend", string(qp.Trend)},
		{"Next quarter target", next},
		{"Annual target", annual.AnnualTarget},
		{"Annual completion (%)", round2(annual.Completion)},
	}
	if qp.TargetDefaulted {
		rows = append(rows, []any{"Note", "No target set for this quarter; performance is measured against 1"})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 28)
}

func writeMonthly(f *excelize.File, qp dto.QuarterProgressResponse) error {
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return err
	}
	header := []any{"Month", "Actual", "Target", "Performance (%)", "Band"}
	if err := f.SetSheetRow(monthlySheet, "A1", &header); err != nil {
		return err
	}
	for i, month := range qp.Months {
		actual, target := 0.0, 0.0
		if i < len(qp.MonthlyValues) {
			actual = qp.MonthlyValues[i]
		}
		if i < len(qp.MonthlyTargets) {
			target = qp.MonthlyTargets[i]
		}
		perf := 0.0
		if target != 0 {
			perf = actual / target * 100
		}
		row := []any{month, actual, target, round2(perf), string(progress.PerformanceBand(perf))}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(monthlySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSubIndicators(f *excelize.File, details []progress.SubIndicatorDetail) error {
	if _, err := f.NewSheet(subSheet); err != nil {
		return err
	}
	header := []any{"Key", "Sub-indicator", "Actual", "Target", "Performance (%)"}
	if err := f.SetSheetRow(subSheet, "A1", &header); err != nil {
		return err
	}
	for i, d := range details {
		row := []any{d.Key, d.Name, d.Actual, d.Target, round2(d.Performance)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(subSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(subSheet, "B", "B", 40)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func sanitizeFilePart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
