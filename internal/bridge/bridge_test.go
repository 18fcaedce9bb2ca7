package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

var errAlarmService = errors.New("alarm service failure")

// call records one registration issued to the fake alarm service.
type call struct {
	intent          platform.PendingIntent
	mode            platform.Mode
	clock           platform.Clock
	triggerAtMillis int64
}

// fakeAlarms implements platform.AlarmManager and keeps one slot per key.
type fakeAlarms struct {
	// setErr is returned from every registration when set.
	setErr error
	// permissionErr is returned from CanScheduleExactAlarms when set.
	permissionErr error
	// slots holds the latest registration per key.
	slots map[platform.Key]call
	// calls lists every registration in order.
	calls []call
	// caps are reported from Capabilities.
	caps platform.Capabilities
	// allowed is reported from CanScheduleExactAlarms.
	allowed bool
	// permissionQueries counts CanScheduleExactAlarms calls.
	permissionQueries int
}

func newFakeAlarms(caps platform.Capabilities) *fakeAlarms {
	return &fakeAlarms{
		slots: make(map[platform.Key]call),
		caps:  caps,
	}
}

func (f *fakeAlarms) Capabilities() platform.Capabilities { return f.caps }

func (f *fakeAlarms) CanScheduleExactAlarms(context.Context) (bool, error) {
	f.permissionQueries++

	return f.allowed, f.permissionErr
}

func (f *fakeAlarms) SetExactAndAllowWhileIdle(
	_ context.Context,
	clock platform.Clock,
	at int64,
	intent *platform.PendingIntent,
) error {
	return f.record(platform.ModeExactAllowWhileIdle, clock, at, intent)
}

func (f *fakeAlarms) SetExact(_ context.Context, clock platform.Clock, at int64, intent *platform.PendingIntent) error {
	return f.record(platform.ModeExact, clock, at, intent)
}

func (f *fakeAlarms) record(mode platform.Mode, clock platform.Clock, at int64, intent *platform.PendingIntent) error {
	c := call{intent: *intent, mode: mode, clock: clock, triggerAtMillis: at}
	f.calls = append(f.calls, c)

	if f.setErr != nil {
		return f.setErr
	}

	f.slots[intent.Key()] = c

	return nil
}

// TestAreExactAlarmsAllowed covers gated and ungated hosts.
func TestAreExactAlarmsAllowed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, reported := range []bool{true, false} {
		alarms := newFakeAlarms(platform.Capabilities{ExactAlarmPermission: true})
		alarms.allowed = reported

		allowed, err := New(alarms).AreExactAlarmsAllowed(ctx)
		require.NoError(t, err)
		require.Equal(t, reported, allowed)
		require.Equal(t, 1, alarms.permissionQueries)
	}

	// Older hosts: no permission concept, always allowed and never queried.
	alarms := newFakeAlarms(platform.Capabilities{})
	alarms.allowed = false

	allowed, err := New(alarms).AreExactAlarmsAllowed(ctx)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Zero(t, alarms.permissionQueries)

	// Failures of the host surface unchanged.
	alarms = newFakeAlarms(platform.Capabilities{ExactAlarmPermission: true})
	alarms.permissionErr = errAlarmService

	_, err = New(alarms).AreExactAlarmsAllowed(ctx)
	require.ErrorIs(t, err, errAlarmService)
}

// TestScheduleExactAlarm_Example issues exactly one wake-up registration for the request.
func TestScheduleExactAlarm_Example(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms(platform.Capabilities{ExactAllowWhileIdle: true})

	ok, err := New(alarms).ScheduleExactAlarm(context.Background(), &domain.ScheduleRequest{
		ID:         1,
		TimeMillis: 1700000000000,
		Title:      "Reminder",
		Text:       "Call back",
	})
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, alarms.calls, 1)

	got := alarms.calls[0]
	require.Equal(t, platform.ModeExactAllowWhileIdle, got.mode)
	require.Equal(t, platform.RTCWakeup, got.clock)
	require.Equal(t, int64(1700000000000), got.triggerAtMillis)
	require.Equal(t, platform.PendingIntent{
		Target:      ReceiverTarget,
		Payload:     domain.Payload{Title: "Reminder", Text: "Call back"},
		RequestCode: 1,
		Flags:       platform.FlagUpdateCurrent | platform.FlagImmutable,
	}, got.intent)
}

// TestScheduleExactAlarm_FallsBackToExact uses the plain entry point on hosts without idle support.
func TestScheduleExactAlarm_FallsBackToExact(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms(platform.Capabilities{})

	ok, err := New(alarms).ScheduleExactAlarm(context.Background(), &domain.ScheduleRequest{ID: 3})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, alarms.calls, 1)
	require.Equal(t, platform.ModeExact, alarms.calls[0].mode)
	require.Equal(t, platform.RTCWakeup, alarms.calls[0].clock)
}

// TestScheduleExactAlarm_SameIDReplaces keeps one slot per id with the latest values.
func TestScheduleExactAlarm_SameIDReplaces(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms(platform.Capabilities{ExactAllowWhileIdle: true})
	b := New(alarms)
	ctx := context.Background()

	_, err := b.ScheduleExactAlarm(ctx, &domain.ScheduleRequest{ID: 5, TimeMillis: 1000, Title: "a", Text: "x"})
	require.NoError(t, err)
	_, err = b.ScheduleExactAlarm(ctx, &domain.ScheduleRequest{ID: 5, TimeMillis: 2000, Title: "b", Text: "y"})
	require.NoError(t, err)

	require.Len(t, alarms.slots, 1)

	slot := alarms.slots[platform.Key{Target: ReceiverTarget, RequestCode: 5}]
	require.Equal(t, int64(2000), slot.triggerAtMillis)
	require.Equal(t, domain.Payload{Title: "b", Text: "y"}, slot.intent.Payload)
	require.True(t, slot.intent.Flags.Has(platform.FlagUpdateCurrent))
}

// TestScheduleExactAlarm_PropagatesFailure ensures host failures are not swallowed.
func TestScheduleExactAlarm_PropagatesFailure(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms(platform.Capabilities{})
	alarms.setErr = errAlarmService

	ok, err := New(alarms).ScheduleExactAlarm(context.Background(), &domain.ScheduleRequest{})
	require.ErrorIs(t, err, errAlarmService)
	require.False(t, ok)
}

// TestDispatch routes by exact name, applies defaults and rejects unknown methods.
func TestDispatch(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms(platform.Capabilities{ExactAlarmPermission: true, ExactAllowWhileIdle: true})
	alarms.allowed = true
	b := New(alarms)
	ctx := context.Background()

	result, err := b.Dispatch(ctx, MethodAreExactAlarmsAllowed, nil)
	require.NoError(t, err)
	require.Equal(t, true, result)

	result, err = b.Dispatch(ctx, MethodScheduleExactAlarm, map[string]any{})
	require.NoError(t, err)
	require.Equal(t, true, result)
	require.Len(t, alarms.calls, 1)
	require.Equal(t, int64(0), alarms.calls[0].triggerAtMillis)
	require.Equal(t, int32(0), alarms.calls[0].intent.RequestCode)
	require.Equal(t, domain.Payload{Title: domain.DefaultTitle}, alarms.calls[0].intent.Payload)

	_, err = b.Dispatch(ctx, MethodScheduleExactAlarm, map[string]any{domain.ArgID: "one"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Len(t, alarms.calls, 1)

	for _, method := range []string{"cancelAlarm", "ScheduleExactAlarm", "scheduleExactAlarm ", ""} {
		_, err = b.Dispatch(ctx, method, map[string]any{domain.ArgID: 9})
		require.ErrorIs(t, err, ErrNotImplemented, "method %q", method)
	}

	require.Len(t, alarms.calls, 1)
}
