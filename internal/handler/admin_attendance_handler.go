package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/worktime-api/internal/dto"
	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/internal/service"
	"github.com/noah-isme/worktime-api/pkg/clock"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
	"github.com/noah-isme/worktime-api/pkg/response"
)

type correctionService interface {
	CorrectRecord(ctx context.Context, employeeID, dateISO string, patch models.RecordPatch) (models.LedgerEntry, error)
}

type ledgerQuery interface {
	ListByEmployeeMonth(ctx context.Context, employeeID string, month models.Month) []models.LedgerEntry
	ListByDate(ctx context.Context, dateISO string) []models.LedgerEntry
	Watch(fn func(models.LedgerChange)) func()
}

type timesheetExporter interface {
	Timesheet(ctx context.Context, employeeID string, month models.Month, format service.ExportFormat) (*service.ExportFile, error)
}

// AdminAttendanceOptions tunes the administrator endpoints.
type AdminAttendanceOptions struct {
	Location       *time.Location
	ExportsEnabled bool
	// Heartbeat is the keep-alive interval of the change stream.
	Heartbeat time.Duration
}

// AdminAttendanceHandler exposes ledger oversight, corrections, overviews,
// exports and the ledger change stream.
type AdminAttendanceHandler struct {
	corrections correctionService
	ledger      ledgerQuery
	monthly     monthlyService
	exports     timesheetExporter
	validator   *validator.Validate
	clock       clock.Clock
	opts        AdminAttendanceOptions
}

// NewAdminAttendanceHandler builds the administrator attendance handler.
func NewAdminAttendanceHandler(corrections correctionService, ledger ledgerQuery, monthly monthlyService, exports timesheetExporter, validate *validator.Validate, clk clock.Clock, opts AdminAttendanceOptions) *AdminAttendanceHandler {
	if validate == nil {
		validate = validator.New()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 25 * time.Second
	}
	return &AdminAttendanceHandler{
		corrections: corrections,
		ledger:      ledger,
		monthly:     monthly,
		exports:     exports,
		validator:   validate,
		clock:       clk,
		opts:        opts,
	}
}

// List godoc
// @Summary Ledger entries for one employee and month
// @Tags Admin Attendance
// @Produce json
// @Param employeeId query string true "Employee ID"
// @Param month query string false "Month (YYYY-MM), defaults to current"
// @Success 200 {object} response.Envelope
// @Router /admin/attendance [get]
func (h *AdminAttendanceHandler) List(c *gin.Context) {
	var query dto.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, validationError(err))
		return
	}
	month, err := resolveMonth(query.Month, h.clock.Now(), h.opts.Location)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries := h.ledger.ListByEmployeeMonth(c.Request.Context(), query.EmployeeID, month)
	response.OK(c, entries, map[string]interface{}{
		"employeeId": query.EmployeeID,
		"month":      month.String(),
		"count":      len(entries),
	})
}

// ByDate godoc
// @Summary Every employee's ledger entry for a date
// @Tags Admin Attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /admin/attendance/date/{date} [get]
func (h *AdminAttendanceHandler) ByDate(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD"))
		return
	}
	entries := h.ledger.ListByDate(c.Request.Context(), date)
	response.OK(c, entries, map[string]interface{}{"date": date, "count": len(entries)})
}

// Correct godoc
// @Summary Correct a day's punches
// @Description Absent fields are kept, null clears a field. Ordering is not validated.
// @Tags Admin Attendance
// @Accept json
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body dto.CorrectionRequest true "Correction"
// @Success 200 {object} response.Envelope
// @Router /admin/attendance/{employeeId}/{date} [patch]
func (h *AdminAttendanceHandler) Correct(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("employeeId"))
	date := c.Param("date")

	var req dto.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid correction payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, validationError(err))
		return
	}
	patch, err := req.ToPatch(date, h.opts.Location)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	if patch.Empty() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "correction changes nothing"))
		return
	}

	entry, err := h.corrections.CorrectRecord(c.Request.Context(), employeeID, date, patch)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// Overview godoc
// @Summary Monthly totals for an employee
// @Tags Admin Attendance
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Param month query string false "Month (YYYY-MM), defaults to current"
// @Success 200 {object} response.Envelope
// @Router /admin/attendance/{employeeId}/overview [get]
func (h *AdminAttendanceHandler) Overview(c *gin.Context) {
	var query dto.MonthQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, validationError(err))
		return
	}
	month, err := resolveMonth(query.Month, h.clock.Now(), h.opts.Location)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, h.monthly.Overview(c.Request.Context(), c.Param("employeeId"), month))
}

// Export godoc
// @Summary Download a monthly timesheet
// @Tags Admin Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param employeeId path string true "Employee ID"
// @Param month query string false "Month (YYYY-MM), defaults to current"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /admin/attendance/{employeeId}/export [get]
func (h *AdminAttendanceHandler) Export(c *gin.Context) {
	if !h.opts.ExportsEnabled || h.exports == nil {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, validationError(err))
		return
	}
	month, err := resolveMonth(query.Month, h.clock.Now(), h.opts.Location)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, ok := service.ParseExportFormat(query.Format)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	file, err := h.exports.Timesheet(c.Request.Context(), c.Param("employeeId"), month, format)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Stream godoc
// @Summary Server-sent ledger change notifications
// @Description Emits a "ledger" event whenever any writer rewrites the shared ledger; clients re-read on receipt.
// @Tags Admin Attendance
// @Produce text/event-stream
// @Router /admin/attendance/stream [get]
func (h *AdminAttendanceHandler) Stream(c *gin.Context) {
	events := make(chan models.LedgerChange, 16)
	stop := h.ledger.Watch(func(change models.LedgerChange) {
		select {
		case events <- change:
		default:
		}
	})
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("connected", gin.H{"status": "connected"})
	c.Writer.Flush()

	keepalive := time.NewTicker(h.opts.Heartbeat)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case change := <-events:
			c.SSEvent("ledger", change)
			c.Writer.Flush()
		case <-keepalive.C:
			c.SSEvent("ping", gin.H{"timestamp": h.clock.Now().Unix()})
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
