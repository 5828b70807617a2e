package models

// StandardShiftMinutes is the regular/overtime threshold (9 hours).
const StandardShiftMinutes int64 = 540

// MonthlyTargetMinutes is the monthly hours goal shown on the employee calendar (160h).
const MonthlyTargetMinutes int64 = 160 * 60

// WorkedTime is the break-adjusted view of a day: attendance span minus break time.
type WorkedTime struct {
	Started   bool  `json:"started"`
	ElapsedMs int64 `json:"elapsedMs"`
	BreakMs   int64 `json:"breakMs"`
	WorkedMs  int64 `json:"workedMs"`
}

// ShiftSplit is the 9-hour-shift view of a day. Break time is not subtracted.
type ShiftSplit struct {
	TotalMinutes    int64   `json:"totalMinutes"`
	RegularMinutes  int64   `json:"regularMinutes"`
	OvertimeMinutes int64   `json:"overtimeMinutes"`
	ProgressPct     float64 `json:"progressPct"`
}

// MonthlyOverview aggregates one employee's records for a month.
type MonthlyOverview struct {
	EmployeeID           string  `json:"employeeId"`
	Month                string  `json:"month"`
	PresentDays          int     `json:"presentDays"`
	IncompleteDays       int     `json:"incompleteDays"`
	AbsentDays           int     `json:"absentDays"`
	TotalWorkMinutes     int64   `json:"totalWorkMinutes"`
	AvgMinutesPerWorkDay float64 `json:"avgMinutesPerWorkDay"`
	TargetMinutes        int64   `json:"targetMinutes"`
	TargetProgressPct    float64 `json:"targetProgressPct"`
}
