package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/pkg/export"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
)

// ExportFormat selects the timesheet file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat accepts csv or pdf, defaulting to csv when empty.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, true
	case ExportFormatPDF:
		return ExportFormatPDF, true
	default:
		return "", false
	}
}

var timesheetHeaders = []string{"Date", "Time In", "Lunch Out", "Lunch In", "Time Out", "Source", "Worked", "Status"}

type historyProvider interface {
	History(ctx context.Context, employeeID string, month models.Month) MonthlyHistory
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered timesheet ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders monthly timesheets from the ledger.
type ExportService struct {
	history historyProvider
	csv     datasetRenderer
	pdf     datasetRenderer
	loc     *time.Location
	logger  *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// package defaults.
func NewExportService(history historyProvider, loc *time.Location, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if csv == nil {
		csv = export.NewCSVRenderer()
	}
	if pdf == nil {
		pdf = export.NewPDFRenderer()
	}
	return &ExportService{history: history, csv: csv, pdf: pdf, loc: loc, logger: logger}
}

// Timesheet renders one employee's month.
func (s *ExportService) Timesheet(ctx context.Context, employeeID string, month models.Month, format ExportFormat) (*ExportFile, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee id is required")
	}

	dataset := s.buildDataset(s.history.History(ctx, employeeID, month))

	var (
		body        []byte
		err         error
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		body, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("timesheet render failed", zap.String("employee_id", employeeID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timesheet")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("timesheet_%s_%s.%s", sanitizeFilename(employeeID), month, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) buildDataset(history MonthlyHistory) export.Dataset {
	rows := make([][]string, 0, len(history.Entries))
	for _, entry := range history.Entries {
		worked := "-"
		if entry.TimeIn != nil && entry.TimeOut != nil {
			worked = FormatHoursMinutes(ComputeBreakAdjustedWorkedTime(entry.Punches, *entry.TimeOut).WorkedMs)
		}
		rows = append(rows, []string{
			entry.DateISO,
			s.clockTime(entry.TimeIn),
			s.clockTime(entry.LunchOut),
			s.clockTime(entry.LunchIn),
			s.clockTime(entry.TimeOut),
			string(entry.Source),
			worked,
			entry.Status().Label(),
		})
	}

	o := history.Overview
	return export.Dataset{
		Title:    "Monthly Timesheet",
		Subtitle: fmt.Sprintf("Employee %s, %s", history.EmployeeID, history.Month),
		Headers:  timesheetHeaders,
		Rows:     rows,
		Summary: []export.SummaryLine{
			{Label: "Present days", Value: fmt.Sprint(o.PresentDays)},
			{Label: "Incomplete days", Value: fmt.Sprint(o.IncompleteDays)},
			{Label: "Absent days", Value: fmt.Sprint(o.AbsentDays)},
			{Label: "Total worked", Value: FormatHoursMinutes(o.TotalWorkMinutes * 60000)},
			{Label: "Target progress", Value: fmt.Sprintf("%.1f%%", o.TargetProgressPct)},
		},
	}
}

func (s *ExportService) clockTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.In(s.loc).Format("15:04")
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 64 {
		return result[:64]
	}
	return result
}
