package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/worktime-api/internal/models"
)

// DeviceHintsRequest carries what the client knows about its display. Every
// field is optional; the User-Agent header fills in a missing userAgent.
type DeviceHintsRequest struct {
	ViewportWidth int    `json:"viewportWidth" validate:"gte=0,lte=20000"`
	HasTouch      bool   `json:"hasTouch"`
	UserAgent     string `json:"userAgent" validate:"max=512"`
}

// MonthQuery selects a calendar month, defaulting to the current one.
type MonthQuery struct {
	Month string `form:"month" validate:"omitempty,datetime=2006-01"`
}

// LedgerQuery filters the administrator ledger view.
type LedgerQuery struct {
	EmployeeID string `form:"employeeId" validate:"required,max=128"`
	Month      string `form:"month" validate:"omitempty,datetime=2006-01"`
}

// ExportQuery selects the month and file type of a timesheet download.
type ExportQuery struct {
	Month  string `form:"month" validate:"omitempty,datetime=2006-01"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf CSV PDF"`
}

// OptionalTimestamp distinguishes an absent JSON field from an explicit null.
type OptionalTimestamp struct {
	Set bool
	Raw *string
}

// UnmarshalJSON records that the field was present; null clears it.
func (o *OptionalTimestamp) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Raw = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string or null: %w", err)
	}
	o.Raw = &raw
	return nil
}

var clockLayouts = []string{"15:04", "15:04:05"}

// Resolve converts the field into a patch. Full RFC 3339 instants are taken
// as-is; bare clock times such as "08:00" are placed on date in loc.
func (o OptionalTimestamp) Resolve(date string, loc *time.Location) (models.TimePatch, error) {
	if !o.Set {
		return models.TimePatch{}, nil
	}
	if o.Raw == nil {
		return models.Clear(), nil
	}
	raw := *o.Raw

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return models.SetTo(t.UTC().Truncate(time.Millisecond)), nil
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(models.DateLayout+" "+layout, date+" "+raw, loc); err == nil {
			return models.SetTo(t.UTC()), nil
		}
	}
	return models.TimePatch{}, fmt.Errorf("invalid time %q: use RFC 3339 or HH:MM", raw)
}

// CorrectionRequest is an administrator edit. Absent fields are kept, null
// fields are cleared.
type CorrectionRequest struct {
	TimeIn   OptionalTimestamp `json:"timeIn"`
	LunchOut OptionalTimestamp `json:"lunchOut"`
	LunchIn  OptionalTimestamp `json:"lunchIn"`
	TimeOut  OptionalTimestamp `json:"timeOut"`
	Source   *string           `json:"source" validate:"omitempty,min=1,max=32"`
}

// ToPatch resolves every field against the record date.
func (r CorrectionRequest) ToPatch(date string, loc *time.Location) (models.RecordPatch, error) {
	if loc == nil {
		loc = time.Local
	}
	var (
		patch models.RecordPatch
		err   error
	)
	fields := []struct {
		name string
		in   OptionalTimestamp
		out  *models.TimePatch
	}{
		{"timeIn", r.TimeIn, &patch.TimeIn},
		{"lunchOut", r.LunchOut, &patch.LunchOut},
		{"lunchIn", r.LunchIn, &patch.LunchIn},
		{"timeOut", r.TimeOut, &patch.TimeOut},
	}
	for _, f := range fields {
		if *f.out, err = f.in.Resolve(date, loc); err != nil {
			return models.RecordPatch{}, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if r.Source != nil {
		source := models.Source(*r.Source)
		patch.Source = &source
	}
	return patch, nil
}

// AccountStatusRequest sets an account's activation flag.
type AccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Inactive"`
}
