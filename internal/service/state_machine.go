package service

import (
	"time"

	"github.com/noah-isme/worktime-api/internal/models"
)

// Action is a guarded employee clock action.
type Action string

const (
	ActionClockIn    Action = "clock_in"
	ActionStartBreak Action = "break_start"
	ActionEndBreak   Action = "break_end"
	ActionClockOut   Action = "clock_out"
)

// Reasons a guarded action was ignored. Rejections are not errors.
const (
	ReasonAlreadyClockedIn    = "already_clocked_in"
	ReasonNotClockedIn        = "not_clocked_in"
	ReasonAlreadyClockedOut   = "already_clocked_out"
	ReasonBreakAlreadyStarted = "break_already_started"
	ReasonNoOpenBreak         = "no_open_break"
	ReasonAccountInactive     = "account_inactive"
	ReasonUnknownAction       = "unknown_action"
)

// Transition applies action to record at instant now. It returns the next
// record and an empty reason, or the unchanged record and the guard that
// rejected the action. Replaying an action is therefore a no-op.
func Transition(action Action, record models.DailyRecord, now time.Time, device models.Device) (models.DailyRecord, string) {
	next := record
	switch action {
	case ActionClockIn:
		if record.TimeIn != nil {
			return record, ReasonAlreadyClockedIn
		}
		next.TimeIn = &now
		next.Device = device

	case ActionStartBreak:
		switch {
		case record.TimeIn == nil:
			return record, ReasonNotClockedIn
		case record.TimeOut != nil:
			return record, ReasonAlreadyClockedOut
		case record.LunchOut != nil:
			return record, ReasonBreakAlreadyStarted
		}
		next.LunchOut = &now

	case ActionEndBreak:
		switch {
		case record.TimeOut != nil:
			return record, ReasonAlreadyClockedOut
		case !record.BreakOpen():
			return record, ReasonNoOpenBreak
		}
		next.LunchIn = &now

	case ActionClockOut:
		switch {
		case record.TimeIn == nil:
			return record, ReasonNotClockedIn
		case record.TimeOut != nil:
			return record, ReasonAlreadyClockedOut
		}
		if record.BreakOpen() {
			lunchIn := now
			next.LunchIn = &lunchIn
		}
		next.TimeOut = &now
		next.Hours = HoursFromMs(ComputeBreakAdjustedWorkedTime(next.Punches, now).WorkedMs)

	default:
		return record, ReasonUnknownAction
	}
	return next, ""
}
