package service

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
)

const overviewCachePrefix = "overview:"

type ledgerReader interface {
	ListByEmployeeMonth(ctx context.Context, employeeID string, month models.Month) []models.LedgerEntry
	Watch(fn func(models.LedgerChange)) func()
}

// MonthlyHistory is one employee's ledger for a month plus its totals.
type MonthlyHistory struct {
	EmployeeID string                 `json:"employeeId"`
	Month      string                 `json:"month"`
	Entries    []models.LedgerEntry   `json:"entries"`
	Overview   models.MonthlyOverview `json:"overview"`
}

// AggregateMonth folds an employee's entries for month into totals. Entries
// outside the month or for another employee are ignored, and a repeated date
// keeps its first occurrence. Only days with both timeIn and timeOut add
// worked minutes; absentDays counts existing entries with nothing set.
func AggregateMonth(employeeID string, month models.Month, entries []models.LedgerEntry) models.MonthlyOverview {
	overview := models.MonthlyOverview{
		EmployeeID:    employeeID,
		Month:         month.String(),
		TargetMinutes: models.MonthlyTargetMinutes,
	}

	seen := make(map[string]struct{}, len(entries))
	var workedMs int64
	for _, entry := range entries {
		if entry.EmployeeID != employeeID || !month.Contains(entry.DateISO) {
			continue
		}
		if _, dup := seen[entry.DateISO]; dup {
			continue
		}
		seen[entry.DateISO] = struct{}{}

		p := entry.Punches
		switch {
		case p.TimeIn != nil && p.TimeOut != nil:
			overview.PresentDays++
			workedMs += ComputeBreakAdjustedWorkedTime(p, *p.TimeOut).WorkedMs
		case p.Empty():
			overview.AbsentDays++
		default:
			overview.IncompleteDays++
		}
	}

	overview.TotalWorkMinutes = workedMs / 60000
	if days := overview.PresentDays + overview.IncompleteDays; days > 0 {
		overview.AvgMinutesPerWorkDay = round2(float64(overview.TotalWorkMinutes) / float64(days))
	}
	overview.TargetProgressPct = round2(math.Min(100, float64(overview.TotalWorkMinutes)/float64(models.MonthlyTargetMinutes)*100))
	return overview
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MonthlyService serves monthly overviews and histories from the ledger,
// optionally through the overview cache.
type MonthlyService struct {
	ledger ledgerReader
	cache  *CacheService
	logger *zap.Logger

	// invalidations counts ledger changes seen by Start; an overview computed
	// across a change is not cached.
	invalidations atomic.Uint64
}

// NewMonthlyService constructs the monthly service.
func NewMonthlyService(ledger ledgerReader, cache *CacheService, logger *zap.Logger) *MonthlyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlyService{ledger: ledger, cache: cache, logger: logger}
}

// Start drops cached overviews whenever the ledger changes. The returned
// function stops watching.
func (s *MonthlyService) Start() func() {
	return s.ledger.Watch(func(change models.LedgerChange) {
		s.logger.Debug("ledger changed, invalidating overviews", zap.String("origin", change.Origin))
		s.invalidations.Add(1)
		s.cache.Invalidate(context.Background(), overviewCachePrefix+"*")
	})
}

// Overview returns the employee's totals for month.
func (s *MonthlyService) Overview(ctx context.Context, employeeID string, month models.Month) models.MonthlyOverview {
	key := overviewCacheKey(employeeID, month)
	var cached models.MonthlyOverview
	if s.cache.Get(ctx, key, &cached) {
		return cached
	}

	seen := s.invalidations.Load()
	overview := AggregateMonth(employeeID, month, s.ledger.ListByEmployeeMonth(ctx, employeeID, month))
	if s.invalidations.Load() == seen {
		s.cache.Set(ctx, key, overview)
	}
	return overview
}

// History returns the employee's ledger entries for month with their totals.
func (s *MonthlyService) History(ctx context.Context, employeeID string, month models.Month) MonthlyHistory {
	entries := s.ledger.ListByEmployeeMonth(ctx, employeeID, month)
	return MonthlyHistory{
		EmployeeID: employeeID,
		Month:      month.String(),
		Entries:    entries,
		Overview:   AggregateMonth(employeeID, month, entries),
	}
}

func overviewCacheKey(employeeID string, month models.Month) string {
	return fmt.Sprintf("%s%s:%s", overviewCachePrefix, employeeID, month)
}
