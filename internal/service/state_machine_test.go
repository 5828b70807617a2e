package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/worktime-api/internal/models"
)

func TestTransitionHappyPath(t *testing.T) {
	rec := models.NewDailyRecord("2025-03-03", models.DeviceDesktop)

	rec, reason := Transition(ActionClockIn, rec, *at(9, 0), models.DeviceMobile)
	require.Empty(t, reason)
	assert.Equal(t, models.StatusInProgress, rec.Status())
	assert.Equal(t, models.DeviceMobile, rec.Device)

	rec, reason = Transition(ActionStartBreak, rec, *at(12, 0), models.DeviceDesktop)
	require.Empty(t, reason)
	assert.Equal(t, models.StatusOnBreak, rec.Status())
	assert.Equal(t, models.DeviceMobile, rec.Device)

	rec, reason = Transition(ActionEndBreak, rec, *at(13, 0), models.DeviceDesktop)
	require.Empty(t, reason)
	assert.Equal(t, models.StatusInProgress, rec.Status())

	rec, reason = Transition(ActionClockOut, rec, *at(18, 0), models.DeviceDesktop)
	require.Empty(t, reason)
	assert.Equal(t, models.StatusCompleted, rec.Status())
	assert.Equal(t, 8.0, rec.Hours)
}

func TestTransitionClockInIsIdempotent(t *testing.T) {
	rec := models.NewDailyRecord("2025-03-03", "")
	once, reason := Transition(ActionClockIn, rec, *at(9, 0), models.DeviceDesktop)
	require.Empty(t, reason)

	twice, reason := Transition(ActionClockIn, once, *at(9, 5), models.DeviceMobile)
	assert.Equal(t, ReasonAlreadyClockedIn, reason)
	assert.Equal(t, once, twice)
	assert.True(t, twice.TimeIn.Equal(*at(9, 0)))
}

func TestTransitionClockOutAutoClosesBreak(t *testing.T) {
	rec := models.DailyRecord{Date: "2025-03-03", Punches: models.Punches{TimeIn: at(9, 0), LunchOut: at(12, 0)}}

	next, reason := Transition(ActionClockOut, rec, *at(17, 0), "")
	require.Empty(t, reason)
	require.NotNil(t, next.LunchIn)
	require.NotNil(t, next.TimeOut)
	assert.True(t, next.LunchIn.Equal(*at(17, 0)))
	assert.True(t, next.TimeOut.Equal(*at(17, 0)))
	assert.Equal(t, 3.0, next.Hours)
	assert.NotSame(t, next.LunchIn, next.TimeOut)
	assert.Nil(t, rec.LunchIn, "input record must not be mutated")
}

func TestTransitionGuards(t *testing.T) {
	fresh := models.NewDailyRecord("2025-03-03", "")
	working := models.DailyRecord{Date: "2025-03-03", Punches: models.Punches{TimeIn: at(9, 0)}}
	onBreak := models.DailyRecord{Date: "2025-03-03", Punches: models.Punches{TimeIn: at(9, 0), LunchOut: at(12, 0)}}
	breakDone := models.DailyRecord{Date: "2025-03-03", Punches: models.Punches{TimeIn: at(9, 0), LunchOut: at(12, 0), LunchIn: at(13, 0)}}
	done := models.DailyRecord{Date: "2025-03-03", Punches: models.Punches{TimeIn: at(9, 0), TimeOut: at(18, 0)}}

	cases := []struct {
		name   string
		action Action
		record models.DailyRecord
		reason string
	}{
		{"break before clock in", ActionStartBreak, fresh, ReasonNotClockedIn},
		{"end break before clock in", ActionEndBreak, fresh, ReasonNoOpenBreak},
		{"clock out before clock in", ActionClockOut, fresh, ReasonNotClockedIn},
		{"end break without break", ActionEndBreak, working, ReasonNoOpenBreak},
		{"second break start", ActionStartBreak, onBreak, ReasonBreakAlreadyStarted},
		{"second break after first ended", ActionStartBreak, breakDone, ReasonBreakAlreadyStarted},
		{"end break twice", ActionEndBreak, breakDone, ReasonNoOpenBreak},
		{"break after clock out", ActionStartBreak, done, ReasonAlreadyClockedOut},
		{"clock out twice", ActionClockOut, done, ReasonAlreadyClockedOut},
		{"clock in after clock out", ActionClockIn, done, ReasonAlreadyClockedIn},
		{"unknown", Action("teleport"), working, ReasonUnknownAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, reason := Transition(tc.action, tc.record, *at(19, 0), models.DeviceDesktop)
			assert.Equal(t, tc.reason, reason)
			assert.Equal(t, tc.record, next)
		})
	}
}

func TestTransitionOrderingInvariantUnderRandomSequences(t *testing.T) {
	actions := []Action{ActionClockIn, ActionStartBreak, ActionEndBreak, ActionClockOut}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		rec := models.NewDailyRecord("2025-03-03", "")
		now := *at(8, 0)
		for step := 0; step < 12; step++ {
			now = now.Add(time.Duration(rng.Intn(90)+1) * time.Minute)
			rec, _ = Transition(actions[rng.Intn(len(actions))], rec, now, models.DeviceDesktop)

			if rec.LunchIn != nil {
				require.NotNil(t, rec.LunchOut)
			}
			if rec.TimeOut != nil {
				require.NotNil(t, rec.TimeIn)
			}
			if rec.LunchOut != nil {
				require.NotNil(t, rec.TimeIn)
			}
			worked := ComputeBreakAdjustedWorkedTime(rec.Punches, now)
			require.GreaterOrEqual(t, worked.WorkedMs, int64(0))
		}
	}
}
