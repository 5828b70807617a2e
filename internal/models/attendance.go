package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for record keys.
const DateLayout = "2006-01-02"

// Status is the derived attendance state of a day. It is never stored.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOnBreak    Status = "ON_BREAK"
	StatusCompleted  Status = "COMPLETED"
)

// Label returns the wording shown on the employee dashboard.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "Clocked In"
	case StatusOnBreak:
		return "On Break"
	case StatusCompleted:
		return "Clocked Out"
	default:
		return "Not Clocked In"
	}
}

// Punches holds the four clock events of a day. A nil pointer means the event
// has not happened. Instants serialise as ISO-8601 strings or null.
type Punches struct {
	TimeIn   *time.Time `json:"timeIn"`
	LunchOut *time.Time `json:"lunchOut"`
	LunchIn  *time.Time `json:"lunchIn"`
	TimeOut  *time.Time `json:"timeOut"`
}

// Status derives the day's state from which events are set.
func (p Punches) Status() Status {
	switch {
	case p.TimeIn == nil:
		return StatusNotStarted
	case p.TimeOut != nil:
		return StatusCompleted
	case p.LunchOut != nil && p.LunchIn == nil:
		return StatusOnBreak
	default:
		return StatusInProgress
	}
}

// BreakOpen reports whether a break has started but not ended.
func (p Punches) BreakOpen() bool {
	return p.LunchOut != nil && p.LunchIn == nil
}

// Empty reports whether none of the four events is set.
func (p Punches) Empty() bool {
	return p.TimeIn == nil && p.LunchOut == nil && p.LunchIn == nil && p.TimeOut == nil
}

// Device is the coarse device category captured at time-in.
type Device string

const (
	DeviceDesktop Device = "Desktop"
	DeviceTablet  Device = "Tablet"
	DeviceMobile  Device = "Mobile"
)

// Source is the origin tag carried by ledger entries.
type Source string

const (
	SourceDesktop Source = "Desktop"
	SourceMobile  Source = "Mobile"
)

// SourceFromDevice maps an employee device tag onto the ledger source field.
func SourceFromDevice(d Device) Source {
	if strings.Contains(strings.ToLower(string(d)), "mobile") {
		return SourceMobile
	}
	return SourceDesktop
}

// DailyRecord is one employee's attendance for one calendar date as kept by
// the employee session.
type DailyRecord struct {
	Date string `json:"date"`
	Punches
	Device Device `json:"device,omitempty"`
	// Hours is the break-adjusted worked time stamped at clock-out.
	Hours float64 `json:"hours"`
}

// NewDailyRecord returns the empty record for date.
func NewDailyRecord(date string, device Device) DailyRecord {
	return DailyRecord{Date: date, Device: device}
}

// LedgerEntry is the administrator-visible copy of a daily record.
type LedgerEntry struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Source     Source `json:"source"`
	DateISO    string `json:"dateISO"`
	Punches
}

// LedgerKey builds the ledger mapping key for an employee/date pair.
func LedgerKey(employeeID, dateISO string) string {
	return employeeID + ":" + dateISO
}

// LedgerEntryID builds the stable per-day entry id.
func LedgerEntryID(employeeID, dateISO string) string {
	return employeeID + "_" + dateISO
}

// LedgerEntryFromRecord converts an employee-side record into its ledger form.
func LedgerEntryFromRecord(employeeID string, record DailyRecord) LedgerEntry {
	return LedgerEntry{
		ID:         LedgerEntryID(employeeID, record.Date),
		EmployeeID: employeeID,
		Source:     SourceFromDevice(record.Device),
		DateISO:    record.Date,
		Punches:    record.Punches,
	}
}

// LedgerChange is delivered to observers whenever the shared ledger is rewritten.
type LedgerChange struct {
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}
