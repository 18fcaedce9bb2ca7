package bridge

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

// ChannelName addresses the alarm method channel.
const ChannelName = "com.example.simplenotification/alarm"

// Method names accepted on the channel.
const (
	MethodAreExactAlarmsAllowed = "areExactAlarmsAllowed"
	MethodScheduleExactAlarm    = "scheduleExactAlarm"
)

// ReceiverTarget names the receiver that handles fired alarms.
const ReceiverTarget = "AlarmReceiver"

// ErrNotImplemented is returned for method names the channel does not know.
var ErrNotImplemented = errors.New("method not implemented")

// Bridge forwards channel calls to the host alarm service.
type Bridge struct {
	// alarms is the host alarm service.
	alarms platform.AlarmManager
}

// New creates a bridge over the provided alarm service.
func New(alarms platform.AlarmManager) *Bridge {
	return &Bridge{
		alarms: alarms,
	}
}

// AreExactAlarmsAllowed reports whether exact alarms may be scheduled.
// Hosts without a runtime exact-alarm permission always allow them.
func (b *Bridge) AreExactAlarmsAllowed(ctx context.Context) (bool, error) {
	if !b.alarms.Capabilities().ExactAlarmPermission {
		return true, nil
	}

	return b.alarms.CanScheduleExactAlarms(ctx)
}

// ScheduleExactAlarm registers a wake-up alarm at req.TimeMillis carrying
// title and text for the receiver. An alarm already pending under req.ID is
// replaced. The result is true once the alarm service has been called; it
// does not confirm that the service will deliver the alarm.
func (b *Bridge) ScheduleExactAlarm(ctx context.Context, req *domain.ScheduleRequest) (bool, error) {
	intent := &platform.PendingIntent{
		Target:      ReceiverTarget,
		Payload:     req.Payload(),
		RequestCode: req.ID,
		Flags:       platform.FlagUpdateCurrent | platform.FlagImmutable,
	}

	var err error
	if b.alarms.Capabilities().ExactAllowWhileIdle {
		err = b.alarms.SetExactAndAllowWhileIdle(ctx, platform.RTCWakeup, req.TimeMillis, intent)
	} else {
		err = b.alarms.SetExact(ctx, platform.RTCWakeup, req.TimeMillis, intent)
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// Dispatch routes a channel call by exact method name. Unknown names return
// ErrNotImplemented without touching the alarm service.
func (b *Bridge) Dispatch(ctx context.Context, method string, args map[string]any) (any, error) {
	switch method {
	case MethodAreExactAlarmsAllowed:
		return b.AreExactAlarmsAllowed(ctx)
	case MethodScheduleExactAlarm:
		req, err := domain.ParseScheduleRequest(args)
		if err != nil {
			return nil, err
		}

		return b.ScheduleExactAlarm(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotImplemented, method)
	}
}
