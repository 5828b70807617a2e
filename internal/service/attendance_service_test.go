package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/internal/repository"
	"github.com/noah-isme/worktime-api/pkg/clock"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"

type flakyStore struct {
	*kvstore.MemoryStore
	failGet bool
	failSet bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("storage unavailable")
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type attendanceFixture struct {
	svc      *AttendanceService
	store    *flakyStore
	clock    *clock.Manual
	records  *repository.DailyRecordRepository
	ledger   *repository.LedgerRepository
	bridge   *AttendanceBridge
	accounts *AccountService
}

func newAttendanceFixture(t *testing.T, surface bool) *attendanceFixture {
	t.Helper()
	store := &flakyStore{MemoryStore: kvstore.NewMemoryStore()}
	clk := clock.NewManual(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	records := repository.NewDailyRecordRepository(store)
	ledger := repository.NewLedgerRepository(store)
	bridge := NewAttendanceBridge(ledger, nil, zap.NewNop())
	accounts := NewAccountService(repository.NewAccountRepository(store), nil, zap.NewNop())
	svc := NewAttendanceService(records, bridge, accounts, clk, nil, zap.NewNop(), AttendanceServiceConfig{
		Location:             time.UTC,
		SurfaceStorageErrors: surface,
	})
	return &attendanceFixture{svc: svc, store: store, clock: clk, records: records, ledger: ledger, bridge: bridge, accounts: accounts}
}

func (f *attendanceFixture) setTime(t *testing.T, hour, minute int) {
	t.Helper()
	f.clock.Set(time.Date(2025, time.March, 3, hour, minute, 0, 0, time.UTC))
}

func TestAttendanceServiceFullDay(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	res, err := f.svc.ClockIn(ctx, "E1", DeviceHints{ViewportWidth: 1440})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, models.StatusInProgress, res.Status)
	assert.Equal(t, "2025-03-03", res.Record.Date)
	assert.Equal(t, models.DeviceDesktop, res.Record.Device)

	f.setTime(t, 12, 0)
	res, err = f.svc.StartBreak(ctx, "E1", DeviceHints{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnBreak, res.Status)

	f.setTime(t, 13, 0)
	_, err = f.svc.EndBreak(ctx, "E1", DeviceHints{})
	require.NoError(t, err)

	f.setTime(t, 18, 0)
	res, err = f.svc.ClockOut(ctx, "E1", DeviceHints{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, res.Status)
	assert.Equal(t, 8.0, res.Record.Hours)

	stored, err := f.records.Find(ctx, "E1", "2025-03-03")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, res.Record, *stored)

	entry, ok := f.bridge.Get(ctx, "E1", "2025-03-03")
	require.True(t, ok)
	assert.Equal(t, "E1_2025-03-03", entry.ID)
	assert.Equal(t, models.SourceDesktop, entry.Source)
	assert.Equal(t, stored.Punches, entry.Punches)

	view, err := f.svc.Today(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "Clocked Out", view.StatusLabel)
	assert.Equal(t, 8*hourMs, view.Worked.WorkedMs)
	assert.Equal(t, int64(540), view.Shift.TotalMinutes)
}

func TestAttendanceServiceClockInTwiceKeepsFirstInstant(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	first, err := f.svc.ClockIn(ctx, "E1", DeviceHints{})
	require.NoError(t, err)

	f.setTime(t, 9, 30)
	second, err := f.svc.ClockIn(ctx, "E1", DeviceHints{UserAgent: iphoneUA})
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, ReasonAlreadyClockedIn, second.Reason)
	assert.True(t, second.Record.TimeIn.Equal(*first.Record.TimeIn))
	assert.Equal(t, models.DeviceDesktop, second.Record.Device)
}

func TestAttendanceServiceMobileSourceMapping(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	res, err := f.svc.ClockIn(ctx, "E2", DeviceHints{UserAgent: iphoneUA})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceMobile, res.Record.Device)

	entry, ok := f.bridge.Get(ctx, "E2", "2025-03-03")
	require.True(t, ok)
	assert.Equal(t, models.SourceMobile, entry.Source)
}

func TestAttendanceServiceInactiveAccountIsRejected(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	_, err := f.accounts.SetStatus(ctx, models.AccountRoleUser, "E1", models.AccountInactive)
	require.NoError(t, err)

	for _, do := range []func(context.Context, string, DeviceHints) (ActionResult, error){
		f.svc.ClockIn, f.svc.StartBreak, f.svc.EndBreak, f.svc.ClockOut,
	} {
		res, err := do(ctx, "E1", DeviceHints{})
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, ReasonAccountInactive, res.Reason)
	}

	stored, err := f.records.Find(ctx, "E1", "2025-03-03")
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Empty(t, f.bridge.ListByDate(ctx, "2025-03-03"))

	_, err = f.accounts.Toggle(ctx, models.AccountRoleUser, "E1")
	require.NoError(t, err)
	res, err := f.svc.ClockIn(ctx, "E1", DeviceHints{})
	require.NoError(t, err)
	assert.True(t, res.Applied)
}

func TestAttendanceServiceSwallowsWriteFailures(t *testing.T) {
	f := newAttendanceFixture(t, false)
	f.store.failSet = true

	res, err := f.svc.ClockIn(context.Background(), "E1", DeviceHints{})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Error(t, res.PersistErr)
	assert.NotNil(t, res.Record.TimeIn)
}

func TestAttendanceServiceSurfacesWriteFailures(t *testing.T) {
	f := newAttendanceFixture(t, true)
	f.store.failSet = true

	res, err := f.svc.ClockIn(context.Background(), "E1", DeviceHints{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStorage))
	assert.Error(t, res.PersistErr)
}

func TestAttendanceServiceReadFailureFallsBackToEmptyDay(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.ClockIn(ctx, "E1", DeviceHints{})
	require.NoError(t, err)

	f.store.failGet = true
	view, err := f.svc.Today(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, view.Status)
	assert.Equal(t, "Not Clocked In", view.StatusLabel)
}

func TestAttendanceServiceMalformedRecordTreatedAsAbsent(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, repository.DailyRecordKey("E1", "2025-03-03"), []byte("{not json")))

	view, err := f.svc.Today(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, view.Status)

	res, err := f.svc.ClockIn(ctx, "E1", DeviceHints{})
	require.NoError(t, err)
	assert.True(t, res.Applied)

	stored, err := f.records.Find(ctx, "E1", "2025-03-03")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotNil(t, stored.TimeIn)
}

func TestAttendanceServiceTodayFollowsConfiguredLocation(t *testing.T) {
	f := newAttendanceFixture(t, false)
	f.svc.cfg.Location = time.FixedZone("UTC+9", 9*3600)
	f.setTime(t, 23, 30)

	res, err := f.svc.ClockIn(context.Background(), "E1", DeviceHints{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", res.Record.Date)
	assert.Equal(t, time.UTC, res.Record.TimeIn.Location())
}

func TestAttendanceServiceRequiresIdentity(t *testing.T) {
	f := newAttendanceFixture(t, false)

	_, err := f.svc.ClockIn(context.Background(), " ", DeviceHints{})
	assert.True(t, errors.Is(err, appErrors.ErrMissingIdentity))
	_, err = f.svc.Today(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrMissingIdentity))
}

func TestAttendanceServiceRefreshDevice(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	res, err := f.svc.RefreshDevice(ctx, "E1", DeviceHints{UserAgent: iphoneUA})
	require.NoError(t, err)
	assert.Equal(t, ReasonNotClockedIn, res.Reason)

	_, err = f.svc.ClockIn(ctx, "E1", DeviceHints{ViewportWidth: 1440})
	require.NoError(t, err)

	res, err = f.svc.RefreshDevice(ctx, "E1", DeviceHints{ViewportWidth: 1440})
	require.NoError(t, err)
	assert.Equal(t, ReasonDeviceUnchanged, res.Reason)

	res, err = f.svc.RefreshDevice(ctx, "E1", DeviceHints{UserAgent: iphoneUA})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, models.DeviceMobile, res.Record.Device)
	entry, ok := f.bridge.Get(ctx, "E1", "2025-03-03")
	require.True(t, ok)
	assert.Equal(t, models.SourceMobile, entry.Source)

	f.setTime(t, 17, 0)
	_, err = f.svc.ClockOut(ctx, "E1", DeviceHints{})
	require.NoError(t, err)
	res, err = f.svc.RefreshDevice(ctx, "E1", DeviceHints{ViewportWidth: 1440})
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadyClockedOut, res.Reason)
}

// Corrections bypass ordering on purpose; a timeOut before timeIn is stored
// as given. This is a known quirk of the admin edit path.
func TestCorrectRecordAcceptsTimeOutBeforeTimeIn(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	patch := models.RecordPatch{TimeOut: models.SetTo(*at(8, 0)), TimeIn: models.SetTo(*at(9, 0))}
	entry, err := f.svc.CorrectRecord(ctx, "E1", "2025-03-03", patch)
	require.NoError(t, err)
	require.NotNil(t, entry.TimeIn)
	require.NotNil(t, entry.TimeOut)
	assert.True(t, entry.TimeOut.Before(*entry.TimeIn))
	assert.Equal(t, models.StatusCompleted, entry.Status())

	stored, err := f.records.Find(ctx, "E1", "2025-03-03")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entry.Punches, stored.Punches)
	assert.Equal(t, 0.0, stored.Hours)
}

func TestCorrectRecordTriStatePatch(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.ClockIn(ctx, "E1", DeviceHints{})
	require.NoError(t, err)
	f.setTime(t, 12, 0)
	_, err = f.svc.StartBreak(ctx, "E1", DeviceHints{})
	require.NoError(t, err)

	mobile := models.SourceMobile
	entry, err := f.svc.CorrectRecord(ctx, "E1", "2025-03-03", models.RecordPatch{
		LunchOut: models.Clear(),
		TimeOut:  models.SetTo(*at(17, 0)),
		Source:   &mobile,
	})
	require.NoError(t, err)
	assert.True(t, entry.TimeIn.Equal(*at(9, 0)))
	assert.Nil(t, entry.LunchOut)
	assert.True(t, entry.TimeOut.Equal(*at(17, 0)))
	assert.Equal(t, models.SourceMobile, entry.Source)

	stored, err := f.records.Find(ctx, "E1", "2025-03-03")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.DeviceMobile, stored.Device)
	assert.Equal(t, 8.0, stored.Hours)
}

func TestCorrectRecordKeepsRecordWhenLedgerEntryMissing(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.ClockIn(ctx, "E1", DeviceHints{UserAgent: iphoneUA})
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, repository.LedgerKey, []byte(`{not json`)))

	entry, err := f.svc.CorrectRecord(ctx, "E1", "2025-03-03", models.RecordPatch{TimeOut: models.SetTo(*at(17, 0))})
	require.NoError(t, err)
	require.NotNil(t, entry.TimeIn)
	assert.True(t, entry.TimeIn.Equal(*at(9, 0)))
	assert.Equal(t, models.SourceMobile, entry.Source)

	stored, err := f.records.Find(ctx, "E1", "2025-03-03")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.TimeIn)
	assert.True(t, stored.TimeIn.Equal(*at(9, 0)))
	assert.True(t, stored.TimeOut.Equal(*at(17, 0)))
	assert.Equal(t, models.DeviceMobile, stored.Device)
	assert.Equal(t, 8.0, stored.Hours)
}

func TestCorrectRecordValidatesInput(t *testing.T) {
	f := newAttendanceFixture(t, false)

	_, err := f.svc.CorrectRecord(context.Background(), "E1", "03/03/2025", models.RecordPatch{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = f.svc.CorrectRecord(context.Background(), "", "2025-03-03", models.RecordPatch{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestLedgerHoldsOneEntryPerEmployeeDay(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	_, _ = f.svc.ClockIn(ctx, "E1", DeviceHints{})
	_, _ = f.svc.ClockIn(ctx, "E1", DeviceHints{})
	f.setTime(t, 12, 0)
	_, _ = f.svc.StartBreak(ctx, "E1", DeviceHints{})
	_, _ = f.svc.RefreshDevice(ctx, "E1", DeviceHints{UserAgent: iphoneUA})
	f.setTime(t, 17, 0)
	_, _ = f.svc.ClockOut(ctx, "E1", DeviceHints{})
	_, err := f.svc.CorrectRecord(ctx, "E1", "2025-03-03", models.RecordPatch{TimeIn: models.SetTo(*at(8, 30))})
	require.NoError(t, err)
	_, _ = f.svc.ClockIn(ctx, "E2", DeviceHints{})

	ledger, err := f.ledger.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
	assert.Contains(t, ledger, models.LedgerKey("E1", "2025-03-03"))
	assert.Contains(t, ledger, models.LedgerKey("E2", "2025-03-03"))
}
