package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectionRequestTriState(t *testing.T) {
	var req CorrectionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"timeIn":"09:00","lunchOut":null,"source":"Mobile"}`), &req))

	patch, err := req.ToPatch("2025-03-03", time.UTC)
	require.NoError(t, err)

	assert.True(t, patch.TimeIn.Set)
	require.NotNil(t, patch.TimeIn.Value)
	assert.True(t, patch.TimeIn.Value.Equal(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)))

	assert.True(t, patch.LunchOut.Set)
	assert.Nil(t, patch.LunchOut.Value)

	assert.False(t, patch.LunchIn.Set)
	assert.False(t, patch.TimeOut.Set)
	require.NotNil(t, patch.Source)
	assert.EqualValues(t, "Mobile", *patch.Source)
}

func TestOptionalTimestampResolve(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)

	cases := []struct {
		name string
		raw  string
		loc  *time.Location
		want time.Time
	}{
		{"rfc3339", "2025-03-03T08:00:00.000Z", time.UTC, time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)},
		{"rfc3339 offset", "2025-03-03T08:00:00+07:00", time.UTC, time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)},
		{"clock in zone", "08:00", jakarta, time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)},
		{"clock seconds", "17:30:15", time.UTC, time.Date(2025, 3, 3, 17, 30, 15, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.raw
			patch, err := OptionalTimestamp{Set: true, Raw: &raw}.Resolve("2025-03-03", tc.loc)
			require.NoError(t, err)
			require.NotNil(t, patch.Value)
			assert.True(t, patch.Value.Equal(tc.want), "got %s", patch.Value)
		})
	}

	bad := "quarter past nine"
	_, err := OptionalTimestamp{Set: true, Raw: &bad}.Resolve("2025-03-03", time.UTC)
	assert.Error(t, err)
}

func TestCorrectionRequestRejectsNonString(t *testing.T) {
	var req CorrectionRequest
	assert.Error(t, json.Unmarshal([]byte(`{"timeIn":900}`), &req))
}

func TestCorrectionRequestAcceptsReversedTimes(t *testing.T) {
	var req CorrectionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"timeOut":"08:00","timeIn":"09:00"}`), &req))

	patch, err := req.ToPatch("2025-03-03", time.UTC)
	require.NoError(t, err)
	assert.True(t, patch.TimeOut.Value.Before(*patch.TimeIn.Value))
}

func TestQueryValidation(t *testing.T) {
	v := validator.New()

	assert.NoError(t, v.Struct(MonthQuery{Month: "2025-03"}))
	assert.NoError(t, v.Struct(MonthQuery{}))
	assert.Error(t, v.Struct(MonthQuery{Month: "March"}))

	assert.Error(t, v.Struct(LedgerQuery{Month: "2025-03"}))
	assert.Error(t, v.Struct(ExportQuery{Format: "xlsx"}))
	assert.NoError(t, v.Struct(ExportQuery{Format: "pdf"}))

	assert.NoError(t, v.Struct(AccountStatusRequest{Status: "Inactive"}))
	assert.Error(t, v.Struct(AccountStatusRequest{Status: "Banned"}))
	assert.Error(t, v.Struct(DeviceHintsRequest{ViewportWidth: -1}))
}
