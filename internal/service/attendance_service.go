package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/internal/repository"
	"github.com/noah-isme/worktime-api/pkg/clock"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
)

// ActionRefreshDevice re-tags an open day with the current device.
const ActionRefreshDevice Action = "device_refresh"

// ReasonDeviceUnchanged is reported when a refresh finds the same device.
const ReasonDeviceUnchanged = "device_unchanged"

type dailyRecordRepository interface {
	Find(ctx context.Context, employeeID, date string) (*models.DailyRecord, error)
	Save(ctx context.Context, employeeID string, record models.DailyRecord) error
}

type ledgerWriter interface {
	Mirror(ctx context.Context, employeeID string, record models.DailyRecord) (models.LedgerEntry, error)
	Correct(ctx context.Context, employeeID string, base models.DailyRecord, patch models.RecordPatch) (models.LedgerEntry, error)
}

type accountGate interface {
	IsActive(ctx context.Context, role models.AccountRole, id string) bool
}

// ActionResult describes the outcome of a clock action. A rejected action is
// not an error: Applied is false and Reason names the guard. PersistErr
// carries storage failures whatever the failure policy.
type ActionResult struct {
	Action     Action             `json:"action"`
	Record     models.DailyRecord `json:"record"`
	Status     models.Status      `json:"status"`
	Applied    bool               `json:"applied"`
	Reason     string             `json:"reason,omitempty"`
	PersistErr error              `json:"-"`
}

// TodayView is the employee dashboard snapshot.
type TodayView struct {
	EmployeeID  string             `json:"employeeId"`
	Record      models.DailyRecord `json:"record"`
	Status      models.Status      `json:"status"`
	StatusLabel string             `json:"statusLabel"`
	Worked      models.WorkedTime  `json:"worked"`
	Shift       models.ShiftSplit  `json:"shift"`
	AsOf        time.Time          `json:"asOf"`
}

// AttendanceServiceConfig tunes the attendance service.
type AttendanceServiceConfig struct {
	// Location decides which calendar date "today" is.
	Location *time.Location
	// SurfaceStorageErrors returns ErrStorage from actions whose writes failed.
	SurfaceStorageErrors bool
}

// AttendanceService runs the guarded clock actions for the current day and
// the administrator correction path.
type AttendanceService struct {
	records  dailyRecordRepository
	ledger   ledgerWriter
	accounts accountGate
	clock    clock.Clock
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      AttendanceServiceConfig

	mu sync.Mutex
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records dailyRecordRepository, ledger ledgerWriter, accounts accountGate, clk clock.Clock, metrics *MetricsService, logger *zap.Logger, cfg AttendanceServiceConfig) *AttendanceService {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AttendanceService{
		records:  records,
		ledger:   ledger,
		accounts: accounts,
		clock:    clk,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// ClockIn stamps timeIn and captures the device.
func (s *AttendanceService) ClockIn(ctx context.Context, employeeID string, hints DeviceHints) (ActionResult, error) {
	return s.perform(ctx, ActionClockIn, employeeID, hints)
}

// StartBreak opens the day's single break window.
func (s *AttendanceService) StartBreak(ctx context.Context, employeeID string, hints DeviceHints) (ActionResult, error) {
	return s.perform(ctx, ActionStartBreak, employeeID, hints)
}

// EndBreak closes the open break window.
func (s *AttendanceService) EndBreak(ctx context.Context, employeeID string, hints DeviceHints) (ActionResult, error) {
	return s.perform(ctx, ActionEndBreak, employeeID, hints)
}

// ClockOut stamps timeOut, closing an open break at the same instant.
func (s *AttendanceService) ClockOut(ctx context.Context, employeeID string, hints DeviceHints) (ActionResult, error) {
	return s.perform(ctx, ActionClockOut, employeeID, hints)
}

func (s *AttendanceService) perform(ctx context.Context, action Action, employeeID string, hints DeviceHints) (ActionResult, error) {
	if strings.TrimSpace(employeeID) == "" {
		return ActionResult{Action: action}, appErrors.ErrMissingIdentity
	}
	device := ClassifyDevice(hints)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record := s.load(ctx, employeeID, s.dateOf(now), device)

	if !s.accounts.IsActive(ctx, models.AccountRoleUser, employeeID) {
		return s.reject(action, record, ReasonAccountInactive), nil
	}

	next, reason := Transition(action, record, now, device)
	if reason != "" {
		return s.reject(action, record, reason), nil
	}
	return s.commit(ctx, action, employeeID, next)
}

// RefreshDevice re-tags today's record while the day is open.
func (s *AttendanceService) RefreshDevice(ctx context.Context, employeeID string, hints DeviceHints) (ActionResult, error) {
	if strings.TrimSpace(employeeID) == "" {
		return ActionResult{Action: ActionRefreshDevice}, appErrors.ErrMissingIdentity
	}
	device := ClassifyDevice(hints)

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.load(ctx, employeeID, s.dateOf(s.now()), device)
	switch {
	case record.TimeIn == nil:
		return s.reject(ActionRefreshDevice, record, ReasonNotClockedIn), nil
	case record.TimeOut != nil:
		return s.reject(ActionRefreshDevice, record, ReasonAlreadyClockedOut), nil
	case record.Device == device:
		return s.reject(ActionRefreshDevice, record, ReasonDeviceUnchanged), nil
	}

	record.Device = device
	return s.commit(ctx, ActionRefreshDevice, employeeID, record)
}

// Today returns the current day's record and derived figures. It never fails
// on storage problems; an unreadable record shows as not started.
func (s *AttendanceService) Today(ctx context.Context, employeeID string) (TodayView, error) {
	if strings.TrimSpace(employeeID) == "" {
		return TodayView{}, appErrors.ErrMissingIdentity
	}
	now := s.now()
	record := s.load(ctx, employeeID, s.dateOf(now), "")
	status := record.Status()
	return TodayView{
		EmployeeID:  employeeID,
		Record:      record,
		Status:      status,
		StatusLabel: status.Label(),
		Worked:      ComputeBreakAdjustedWorkedTime(record.Punches, now),
		Shift:       ComputeShiftRegularOvertimeSplit(record.Punches, now),
		AsOf:        now,
	}, nil
}

// CorrectRecord overwrites any subset of a day's punches and source on behalf
// of an administrator. Ordering is deliberately not validated. Both the ledger
// and the employee's daily record receive the corrected values.
func (s *AttendanceService) CorrectRecord(ctx context.Context, employeeID, dateISO string, patch models.RecordPatch) (models.LedgerEntry, error) {
	if strings.TrimSpace(employeeID) == "" {
		return models.LedgerEntry{}, appErrors.Clone(appErrors.ErrValidation, "employee id is required")
	}
	if _, err := time.Parse(models.DateLayout, dateISO); err != nil {
		return models.LedgerEntry{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.load(ctx, employeeID, dateISO, "")
	record.Date = dateISO

	var persistErr error
	entry, err := s.ledger.Correct(ctx, employeeID, record, patch)
	if err != nil {
		persistErr = err
		if entry.ID == "" {
			entry = models.LedgerEntryFromRecord(employeeID, record)
			entry.Punches = patch.Apply(entry.Punches)
			if patch.Source != nil {
				entry.Source = *patch.Source
			}
		}
	}

	record.Punches = entry.Punches
	if patch.Source != nil && models.SourceFromDevice(record.Device) != *patch.Source {
		record.Device = models.Device(*patch.Source)
	}
	record.Hours = stampedHours(record.Punches)
	if err := s.records.Save(ctx, employeeID, record); err != nil {
		s.metrics.RecordStorageFailure("record_write")
		persistErr = errors.Join(persistErr, err)
	}

	if persistErr != nil {
		s.logger.Warn("attendance correction not fully persisted",
			zap.String("employee_id", employeeID),
			zap.String("date", dateISO),
			zap.Error(persistErr),
		)
		if s.cfg.SurfaceStorageErrors {
			return entry, appErrors.Wrap(persistErr, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
		}
	}

	s.logger.Info("attendance corrected",
		zap.String("employee_id", employeeID),
		zap.String("date", dateISO),
		zap.String("status", string(entry.Status())),
	)
	return entry, nil
}

func (s *AttendanceService) commit(ctx context.Context, action Action, employeeID string, next models.DailyRecord) (ActionResult, error) {
	result := ActionResult{Action: action, Record: next, Status: next.Status(), Applied: true}
	s.metrics.RecordAction(string(action), "applied")

	var persistErr error
	if err := s.records.Save(ctx, employeeID, next); err != nil {
		s.metrics.RecordStorageFailure("record_write")
		persistErr = err
	}
	if _, err := s.ledger.Mirror(ctx, employeeID, next); err != nil {
		persistErr = errors.Join(persistErr, err)
	}
	if persistErr == nil {
		return result, nil
	}

	result.PersistErr = persistErr
	s.logger.Warn("attendance action not persisted",
		zap.String("action", string(action)),
		zap.String("employee_id", employeeID),
		zap.String("date", next.Date),
		zap.Error(persistErr),
	)
	if s.cfg.SurfaceStorageErrors {
		return result, appErrors.Wrap(persistErr, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return result, nil
}

func (s *AttendanceService) reject(action Action, record models.DailyRecord, reason string) ActionResult {
	s.metrics.RecordAction(string(action), reason)
	return ActionResult{Action: action, Record: record, Status: record.Status(), Reason: reason}
}

// load returns the stored record or a fresh one. Read failures and malformed
// data are logged and treated as absent.
func (s *AttendanceService) load(ctx context.Context, employeeID, date string, device models.Device) models.DailyRecord {
	record, err := s.records.Find(ctx, employeeID, date)
	if err != nil {
		if !errors.Is(err, repository.ErrMalformed) {
			s.metrics.RecordStorageFailure("record_read")
		}
		s.logger.Warn("daily record unreadable, using empty record",
			zap.String("employee_id", employeeID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
	if record == nil {
		return models.NewDailyRecord(date, device)
	}
	return *record
}

// now stamps instants in UTC at millisecond precision, matching the stored ISO form.
func (s *AttendanceService) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}

func (s *AttendanceService) dateOf(t time.Time) string {
	return t.In(s.cfg.Location).Format(models.DateLayout)
}

func stampedHours(p models.Punches) float64 {
	if p.TimeIn == nil || p.TimeOut == nil {
		return 0
	}
	return HoursFromMs(ComputeBreakAdjustedWorkedTime(p, *p.TimeOut).WorkedMs)
}
