package handler

import (
	"context"
	"io"
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

type attendanceService interface {
	ClockIn(ctx context.Context, employeeID string, hints service.DeviceHints) (service.ActionResult, error)
	StartBreak(ctx context.Context, employeeID string, hints service.DeviceHints) (service.ActionResult, error)
	EndBreak(ctx context.Context, employeeID string, hints service.DeviceHints) (service.ActionResult, error)
	ClockOut(ctx context.Context, employeeID string, hints service.DeviceHints) (service.ActionResult, error)
	RefreshDevice(ctx context.Context, employeeID string, hints service.DeviceHints) (service.ActionResult, error)
	Today(ctx context.Context, employeeID string) (service.TodayView, error)
}

type monthlyService interface {
	Overview(ctx context.Context, employeeID string, month models.Month) models.MonthlyOverview
	History(ctx context.Context, employeeID string, month models.Month) service.MonthlyHistory
}

type clockAction func(ctx context.Context, employeeID string, hints service.DeviceHints) (service.ActionResult, error)

// AttendanceHandler exposes the employee clock actions.
type AttendanceHandler struct {
	service   attendanceService
	monthly   monthlyService
	validator *validator.Validate
	clock     clock.Clock
	loc       *time.Location
}

// NewAttendanceHandler builds the employee attendance handler.
func NewAttendanceHandler(svc attendanceService, monthly monthlyService, validate *validator.Validate, clk clock.Clock, loc *time.Location) *AttendanceHandler {
	if validate == nil {
		validate = validator.New()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceHandler{service: svc, monthly: monthly, validator: validate, clock: clk, loc: loc}
}

// Today godoc
// @Summary Today's attendance for the calling employee
// @Tags Attendance
// @Produce json
// @Param X-Employee-ID header string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	employeeID, err := employeeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Today(c.Request.Context(), employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// ClockIn godoc
// @Summary Clock in for today
// @Description Replaying the action is a no-op reported with applied=false.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param X-Employee-ID header string true "Employee ID"
// @Param payload body dto.DeviceHintsRequest false "Device hints"
// @Success 200 {object} response.Envelope
// @Router /attendance/clock-in [post]
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	h.act(c, h.service.ClockIn)
}

// StartBreak godoc
// @Summary Start the day's break
// @Tags Attendance
// @Accept json
// @Produce json
// @Param X-Employee-ID header string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/break-start [post]
func (h *AttendanceHandler) StartBreak(c *gin.Context) {
	h.act(c, h.service.StartBreak)
}

// EndBreak godoc
// @Summary End the open break
// @Tags Attendance
// @Accept json
// @Produce json
// @Param X-Employee-ID header string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/break-end [post]
func (h *AttendanceHandler) EndBreak(c *gin.Context) {
	h.act(c, h.service.EndBreak)
}

// ClockOut godoc
// @Summary Clock out, closing any open break
// @Tags Attendance
// @Accept json
// @Produce json
// @Param X-Employee-ID header string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/clock-out [post]
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	h.act(c, h.service.ClockOut)
}

// RefreshDevice godoc
// @Summary Re-tag today's open record with the current device
// @Tags Attendance
// @Accept json
// @Produce json
// @Param X-Employee-ID header string true "Employee ID"
// @Param payload body dto.DeviceHintsRequest false "Device hints"
// @Success 200 {object} response.Envelope
// @Router /attendance/device [post]
func (h *AttendanceHandler) RefreshDevice(c *gin.Context) {
	h.act(c, h.service.RefreshDevice)
}

// History godoc
// @Summary Calling employee's ledger entries and totals for a month
// @Tags Attendance
// @Produce json
// @Param X-Employee-ID header string true "Employee ID"
// @Param month query string false "Month (YYYY-MM), defaults to current"
// @Success 200 {object} response.Envelope
// @Router /attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	employeeID, err := employeeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.MonthQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, validationError(err))
		return
	}
	month, err := resolveMonth(query.Month, h.clock.Now(), h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, h.monthly.History(c.Request.Context(), employeeID, month))
}

func (h *AttendanceHandler) act(c *gin.Context, action clockAction) {
	employeeID, err := employeeFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	hints, err := h.bindHints(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := action(c.Request.Context(), employeeID, hints)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	response.OK(c, result, map[string]interface{}{"statusLabel": result.Status.Label()})
}

// bindHints accepts an empty body; the User-Agent header stands in for a
// missing userAgent field.
func (h *AttendanceHandler) bindHints(c *gin.Context) (service.DeviceHints, error) {
	var req dto.DeviceHintsRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
			return service.DeviceHints{}, appErrors.Clone(appErrors.ErrValidation, "invalid device hints")
		}
	}
	if err := h.validator.Struct(req); err != nil {
		return service.DeviceHints{}, validationError(err)
	}
	if req.UserAgent == "" {
		req.UserAgent = c.GetHeader("User-Agent")
	}
	return service.DeviceHints{ViewportWidth: req.ViewportWidth, HasTouch: req.HasTouch, UserAgent: req.UserAgent}, nil
}
