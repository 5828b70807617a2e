package service

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/worktime-api/internal/models"
)

// The two worked-time definitions below feed different displays and are kept
// apart on purpose: the break-adjusted one drives hours and monthly totals,
// the shift split drives the regular/overtime gauge.

// ComputeBreakAdjustedWorkedTime returns the attendance span minus break time.
// An open day (no timeOut) is measured up to now, and so is an open break.
func ComputeBreakAdjustedWorkedTime(p models.Punches, now time.Time) models.WorkedTime {
	if p.TimeIn == nil {
		return models.WorkedTime{}
	}
	end := spanEnd(p, now)

	elapsed := end.Sub(*p.TimeIn).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	var breakMs int64
	switch {
	case p.LunchOut != nil && p.LunchIn != nil:
		breakMs = p.LunchIn.Sub(*p.LunchOut).Milliseconds()
	case p.LunchOut != nil:
		breakMs = end.Sub(*p.LunchOut).Milliseconds()
	}

	worked := elapsed - breakMs
	if worked < 0 {
		worked = 0
	}
	return models.WorkedTime{Started: true, ElapsedMs: elapsed, BreakMs: breakMs, WorkedMs: worked}
}

// ComputeShiftRegularOvertimeSplit splits whole clocked minutes, breaks
// included, against the 540-minute standard shift.
func ComputeShiftRegularOvertimeSplit(p models.Punches, now time.Time) models.ShiftSplit {
	if p.TimeIn == nil {
		return models.ShiftSplit{}
	}
	total := int64(spanEnd(p, now).Sub(*p.TimeIn) / time.Minute)
	if total < 0 {
		total = 0
	}

	regular := total
	if regular > models.StandardShiftMinutes {
		regular = models.StandardShiftMinutes
	}
	progress := math.Min(100, float64(regular)/float64(models.StandardShiftMinutes)*100)

	return models.ShiftSplit{
		TotalMinutes:    total,
		RegularMinutes:  regular,
		OvertimeMinutes: total - regular,
		ProgressPct:     progress,
	}
}

func spanEnd(p models.Punches, now time.Time) time.Time {
	if p.TimeOut != nil {
		return *p.TimeOut
	}
	return now
}

// HoursFromMs converts milliseconds to hours rounded to two decimals.
func HoursFromMs(ms int64) float64 {
	return math.Round(float64(ms)/float64(time.Hour/time.Millisecond)*100) / 100
}

// FormatHoursMinutes renders a duration as "Hh MMm".
func FormatHoursMinutes(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%dh %02dm", int64(d/time.Hour), int64(d%time.Hour/time.Minute))
}

// FormatClock renders a duration as "HH:MM:SS".
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d", int64(d/time.Hour), int64(d%time.Hour/time.Minute), int64(d%time.Minute/time.Second))
}
