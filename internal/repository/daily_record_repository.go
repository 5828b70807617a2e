package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

// DailyRecordRepository persists the employee-session copy of each day's record
// under attendance_{employeeId}_{date}.
type DailyRecordRepository struct {
	store kvstore.Store
}

// NewDailyRecordRepository constructs the repository.
func NewDailyRecordRepository(store kvstore.Store) *DailyRecordRepository {
	return &DailyRecordRepository{store: store}
}

// DailyRecordKey builds the storage key for an employee/date pair.
func DailyRecordKey(employeeID, date string) string {
	return fmt.Sprintf("attendance_%s_%s", employeeID, date)
}

// Find loads the record. A nil record with a nil error means none exists.
func (r *DailyRecordRepository) Find(ctx context.Context, employeeID, date string) (*models.DailyRecord, error) {
	var record models.DailyRecord
	found, err := readJSON(ctx, r.store, DailyRecordKey(employeeID, date), &record)
	if err != nil || !found {
		return nil, err
	}
	if record.Date == "" {
		record.Date = date
	}
	if record.Date != date {
		return nil, fmt.Errorf("record under %s carries date %s: %w", DailyRecordKey(employeeID, date), record.Date, ErrMalformed)
	}
	return &record, nil
}

// Save replaces the stored record.
func (r *DailyRecordRepository) Save(ctx context.Context, employeeID string, record models.DailyRecord) error {
	return writeJSON(ctx, r.store, DailyRecordKey(employeeID, record.Date), record)
}
