package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
)

// Clock selects the time base of an alarm.
type Clock int

const (
	// RTC fires at a wall-clock time without waking the device.
	RTC Clock = iota
	// RTCWakeup fires at a wall-clock time and wakes the device.
	RTCWakeup
)

// String implements fmt.Stringer.
func (c Clock) String() string {
	switch c {
	case RTC:
		return "rtc"
	case RTCWakeup:
		return "rtc_wakeup"
	default:
		return fmt.Sprintf("clock(%d)", int(c))
	}
}

// Mode records which entry point registered an alarm.
type Mode string

const (
	// ModeExact is a plain exact alarm.
	ModeExact Mode = "exact"
	// ModeExactAllowWhileIdle is an exact alarm allowed to fire in idle mode.
	ModeExactAllowWhileIdle Mode = "exact_allow_while_idle"
)

// IntentFlags modify how a pending intent is created.
type IntentFlags uint8

const (
	// FlagUpdateCurrent keeps the existing intent and replaces its payload.
	FlagUpdateCurrent IntentFlags = 1 << iota
	// FlagImmutable forbids the receiver from altering the payload.
	FlagImmutable
)

// Has reports whether all bits of f are set.
func (i IntentFlags) Has(f IntentFlags) bool {
	return i&f == f
}

// PendingIntent is a deferred delivery handle. Two intents with the same
// Target and RequestCode address the same alarm slot.
type PendingIntent struct {
	// Target names the receiver the delivery is routed to.
	Target string
	// Payload is handed to the receiver at fire time.
	Payload alarm.Payload
	// RequestCode disambiguates intents for the same target.
	RequestCode int32
	// Flags modify creation semantics.
	Flags IntentFlags
}

// Key identifies the alarm slot of a pending intent.
type Key struct {
	Target      string
	RequestCode int32
}

// Key returns the slot identity of the intent.
func (p *PendingIntent) Key() Key {
	return Key{
		Target:      p.Target,
		RequestCode: p.RequestCode,
	}
}

// Capabilities are feature probes of the host alarm service.
type Capabilities struct {
	// ExactAlarmPermission reports that exact alarms sit behind a runtime permission.
	ExactAlarmPermission bool `yaml:"exact_alarm_permission"`
	// ExactAllowWhileIdle reports an exact entry point that fires in idle mode.
	ExactAllowWhileIdle bool `yaml:"exact_allow_while_idle"`
}

// Delivery is what a receiver gets when an alarm fires.
type Delivery struct {
	// TriggerAt is the requested fire time.
	TriggerAt time.Time
	// FiredAt is when the alarm actually fired.
	FiredAt time.Time
	// Target is the receiver name from the pending intent.
	Target string
	// Token identifies the registration that fired.
	Token string
	// Mode is the entry point used to register the alarm.
	Mode Mode
	// Payload is the data attached to the pending intent.
	Payload alarm.Payload
	// RequestCode is the request code of the pending intent.
	RequestCode int32
}

var (
	// ErrUnsupportedClock is returned for clock types the service cannot honour.
	ErrUnsupportedClock = errors.New("unsupported alarm clock")
	// ErrNilIntent is returned when no pending intent is given.
	ErrNilIntent = errors.New("pending intent is required")
	// ErrClosed is returned once the alarm service has been shut down.
	ErrClosed = errors.New("alarm service is closed")
)

// AlarmManager is the host alarm service.
type AlarmManager interface {
	// Capabilities reports the features the host offers.
	Capabilities() Capabilities
	// CanScheduleExactAlarms reports the current exact-alarm permission.
	CanScheduleExactAlarms(ctx context.Context) (bool, error)
	// SetExactAndAllowWhileIdle registers an exact alarm that may fire in idle mode.
	SetExactAndAllowWhileIdle(ctx context.Context, clock Clock, triggerAtMillis int64, intent *PendingIntent) error
	// SetExact registers a plain exact alarm.
	SetExact(ctx context.Context, clock Clock, triggerAtMillis int64, intent *PendingIntent) error
}

// Receiver handles fired alarms.
type Receiver interface {
	Receive(ctx context.Context, delivery *Delivery) error
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(ctx context.Context, delivery *Delivery) error

// Receive calls f.
func (f ReceiverFunc) Receive(ctx context.Context, delivery *Delivery) error {
	return f(ctx, delivery)
}
