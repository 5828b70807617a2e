package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/internal/repository"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

// Ledger write origins.
const (
	OriginEmployee = "employee"
	OriginAdmin    = "admin"
)

type ledgerRepository interface {
	Load(ctx context.Context) (repository.Ledger, error)
	Save(ctx context.Context, ledger repository.Ledger) error
	Subscribe(fn kvstore.Listener) func()
}

// LedgerFilter narrows ledger reads. Empty fields match everything.
type LedgerFilter struct {
	EmployeeID string
	Month      *models.Month
	DateISO    string
}

func (f LedgerFilter) match(e models.LedgerEntry) bool {
	if f.EmployeeID != "" && e.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Month != nil && !f.Month.Contains(e.DateISO) {
		return false
	}
	if f.DateISO != "" && e.DateISO != f.DateISO {
		return false
	}
	return true
}

// AttendanceBridge keeps the administrator-visible ledger in step with
// employee-side records. The ledger is a mapping keyed by employee and date:
// every write is an upsert and no history is retained. Writers in other
// processes are not coordinated; the last write to the shared key wins.
type AttendanceBridge struct {
	ledger  ledgerRepository
	metrics *MetricsService
	logger  *zap.Logger

	// mu serialises read-modify-write cycles issued by this process.
	mu sync.Mutex
}

// NewAttendanceBridge constructs the bridge.
func NewAttendanceBridge(ledger ledgerRepository, metrics *MetricsService, logger *zap.Logger) *AttendanceBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceBridge{ledger: ledger, metrics: metrics, logger: logger}
}

// Mirror upserts the full next state of an employee-side record.
func (b *AttendanceBridge) Mirror(ctx context.Context, employeeID string, record models.DailyRecord) (models.LedgerEntry, error) {
	next := models.LedgerEntryFromRecord(employeeID, record)
	return b.upsert(ctx, next, OriginEmployee, func(entry *models.LedgerEntry) {
		entry.Source = next.Source
		entry.Punches = next.Punches
	})
}

// Correct applies an administrator patch to the ledger entry for base.Date.
// A missing entry is seeded from base, so unpatched fields keep the values
// of the employee's daily record.
func (b *AttendanceBridge) Correct(ctx context.Context, employeeID string, base models.DailyRecord, patch models.RecordPatch) (models.LedgerEntry, error) {
	return b.upsert(ctx, models.LedgerEntryFromRecord(employeeID, base), OriginAdmin, func(entry *models.LedgerEntry) {
		entry.Punches = patch.Apply(entry.Punches)
		if patch.Source != nil {
			entry.Source = *patch.Source
		}
	})
}

func (b *AttendanceBridge) upsert(ctx context.Context, seed models.LedgerEntry, origin string, mutate func(*models.LedgerEntry)) (models.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ledger, err := b.ledger.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrMalformed) {
			b.metrics.RecordStorageFailure("ledger_read")
			return models.LedgerEntry{}, err
		}
		b.logger.Warn("ledger malformed, starting from empty", zap.Error(err))
		ledger = repository.Ledger{}
	}

	key := models.LedgerKey(seed.EmployeeID, seed.DateISO)
	entry, ok := ledger[key]
	if !ok {
		entry = seed
		if entry.Source == "" {
			entry.Source = models.SourceDesktop
		}
	}
	mutate(&entry)
	ledger[key] = entry

	if err := b.ledger.Save(ctx, ledger); err != nil {
		b.metrics.RecordStorageFailure("ledger_write")
		return entry, err
	}
	b.metrics.RecordLedgerUpsert(origin)
	return entry, nil
}

// List returns entries matching filter ordered by date then employee. Read
// failures and malformed data yield an empty result.
func (b *AttendanceBridge) List(ctx context.Context, filter LedgerFilter) []models.LedgerEntry {
	ledger, err := b.ledger.Load(ctx)
	if err != nil {
		b.metrics.RecordStorageFailure("ledger_read")
		b.logger.Warn("ledger read failed", zap.Error(err))
		return []models.LedgerEntry{}
	}

	out := make([]models.LedgerEntry, 0, len(ledger))
	for _, entry := range ledger {
		if filter.match(entry) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateISO != out[j].DateISO {
			return out[i].DateISO < out[j].DateISO
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// ListByEmployeeMonth returns one employee's entries for a month.
func (b *AttendanceBridge) ListByEmployeeMonth(ctx context.Context, employeeID string, month models.Month) []models.LedgerEntry {
	return b.List(ctx, LedgerFilter{EmployeeID: employeeID, Month: &month})
}

// ListByDate returns every employee's entry for a date.
func (b *AttendanceBridge) ListByDate(ctx context.Context, dateISO string) []models.LedgerEntry {
	return b.List(ctx, LedgerFilter{DateISO: dateISO})
}

// Get returns the entry for an employee/date pair.
func (b *AttendanceBridge) Get(ctx context.Context, employeeID, dateISO string) (models.LedgerEntry, bool) {
	entries := b.List(ctx, LedgerFilter{EmployeeID: employeeID, DateISO: dateISO})
	if len(entries) == 0 {
		return models.LedgerEntry{}, false
	}
	return entries[0], true
}

// Watch calls fn whenever any writer sharing the store rewrites the ledger.
// Observers should treat cached ledger reads as stale once notified.
func (b *AttendanceBridge) Watch(fn func(models.LedgerChange)) func() {
	return b.ledger.Subscribe(func(evt kvstore.ChangeEvent) {
		b.metrics.RecordLedgerChange()
		fn(models.LedgerChange{Origin: evt.Origin, At: evt.At})
	})
}
