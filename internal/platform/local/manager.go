package local

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Soumi0401/SimpleNotification/internal/logger"
	"github.com/Soumi0401/SimpleNotification/internal/platform"
	"github.com/Soumi0401/SimpleNotification/internal/repository/permission"
)

// Registration is a snapshot of a pending alarm.
type Registration struct {
	// TriggerAt is the requested fire time.
	TriggerAt time.Time
	// RegisteredAt is when the alarm was last (re)registered.
	RegisteredAt time.Time
	// Intent is the pending intent that will be delivered.
	Intent platform.PendingIntent
	// Token identifies this registration; it changes on every replacement.
	Token string
	// Mode is the entry point used to register the alarm.
	Mode platform.Mode
	// Clock is the time base requested by the caller.
	Clock platform.Clock
}

// entry is a registered alarm and the timer that fires it.
type entry struct {
	registration Registration
	timer        *time.Timer
}

// Manager is an in-process alarm service. Alarms live in memory only and are
// lost when the process exits, like the OS registry across a reboot.
type Manager struct {
	// receiver gets every fired alarm.
	receiver platform.Receiver
	// permissions holds the exact-alarm permission toggle.
	permissions permission.Repository
	// baseCtx carries the logger used for deliveries.
	baseCtx context.Context //nolint:containedctx // Deliveries run outside any request.
	// entries maps alarm slots to their pending registration.
	entries map[platform.Key]*entry
	// capabilities are reported verbatim to callers.
	capabilities platform.Capabilities
	// wg tracks in-flight deliveries.
	wg sync.WaitGroup
	// mu protects entries and closed.
	mu sync.Mutex
	// defaultAllowed answers permission queries before the toggle is ever set.
	defaultAllowed bool
	// closed is set once Close has been called.
	closed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithCapabilities sets the capability probes reported by the manager.
func WithCapabilities(c platform.Capabilities) Option {
	return func(m *Manager) {
		m.capabilities = c
	}
}

// WithPermissions sets the repository holding the exact-alarm permission.
func WithPermissions(repo permission.Repository, defaultAllowed bool) Option {
	return func(m *Manager) {
		m.permissions = repo
		m.defaultAllowed = defaultAllowed
	}
}

// NewManager creates an alarm service delivering fired alarms to receiver.
// Without options it behaves like a host with no permission gate and no idle-aware entry point.
func NewManager(ctx context.Context, receiver platform.Receiver, opts ...Option) *Manager {
	m := &Manager{
		receiver:       receiver,
		baseCtx:        logger.WithName(context.WithoutCancel(ctx), "alarm-manager"),
		entries:        make(map[platform.Key]*entry),
		defaultAllowed: true,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Capabilities reports the configured feature probes.
func (m *Manager) Capabilities() platform.Capabilities {
	return m.capabilities
}

// CanScheduleExactAlarms reads the permission toggle. Hosts without the
// permission gate always allow exact alarms.
func (m *Manager) CanScheduleExactAlarms(ctx context.Context) (bool, error) {
	if !m.capabilities.ExactAlarmPermission || m.permissions == nil {
		return true, nil
	}

	state, err := m.permissions.Load(ctx)
	switch {
	case err == nil:
		return state.Allowed, nil
	case errors.Is(err, permission.ErrNotFound):
		return m.defaultAllowed, nil
	default:
		return false, fmt.Errorf("load exact alarm permission: %w", err)
	}
}

// SetExactAndAllowWhileIdle registers an exact alarm that may fire in idle mode.
func (m *Manager) SetExactAndAllowWhileIdle(
	ctx context.Context,
	clock platform.Clock,
	triggerAtMillis int64,
	intent *platform.PendingIntent,
) error {
	return m.set(ctx, platform.ModeExactAllowWhileIdle, clock, triggerAtMillis, intent)
}

// SetExact registers a plain exact alarm.
func (m *Manager) SetExact(
	ctx context.Context,
	clock platform.Clock,
	triggerAtMillis int64,
	intent *platform.PendingIntent,
) error {
	return m.set(ctx, platform.ModeExact, clock, triggerAtMillis, intent)
}

// Pending returns the registered alarms ordered by trigger time.
func (m *Manager) Pending() []Registration {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Registration, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e.registration)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TriggerAt.Equal(result[j].TriggerAt) {
			return result[i].Intent.RequestCode < result[j].Intent.RequestCode
		}

		return result[i].TriggerAt.Before(result[j].TriggerAt)
	})

	return result
}

// Len returns the number of pending alarms.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// Close stops every pending timer and waits for in-flight deliveries.
// Alarms registered afterwards are rejected with platform.ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()

		return nil
	}

	m.closed = true

	dropped := len(m.entries)
	for key, e := range m.entries {
		e.timer.Stop()
		delete(m.entries, key)
	}

	m.mu.Unlock()

	m.wg.Wait()

	logger.InfoKV(m.baseCtx, "Alarm manager closed", "dropped_alarms", dropped)

	return nil
}

// set registers intent at triggerAtMillis, replacing any alarm in the same slot.
func (m *Manager) set(
	ctx context.Context,
	mode platform.Mode,
	clock platform.Clock,
	triggerAtMillis int64,
	intent *platform.PendingIntent,
) error {
	if intent == nil {
		return platform.ErrNilIntent
	}

	if clock != platform.RTC && clock != platform.RTCWakeup {
		return fmt.Errorf("%w: %s", platform.ErrUnsupportedClock, clock)
	}

	var (
		now       = time.Now()
		triggerAt = time.UnixMilli(triggerAtMillis)
		key       = intent.Key()
		reg       = Registration{
			TriggerAt:    triggerAt,
			RegisteredAt: now,
			Intent:       *intent,
			Token:        uuid.NewString(),
			Mode:         mode,
			Clock:        clock,
		}
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return platform.ErrClosed
	}

	previous, replaced := m.entries[key]
	if replaced {
		previous.timer.Stop()

		// Without FLAG_UPDATE_CURRENT the existing intent keeps its payload.
		if !intent.Flags.Has(platform.FlagUpdateCurrent) {
			reg.Intent.Payload = previous.registration.Intent.Payload
		}
	}

	e := &entry{registration: reg}
	e.timer = time.AfterFunc(triggerAt.Sub(now), func() {
		m.fire(key, e)
	})
	m.entries[key] = e

	logger.DebugKV(
		ctx,
		"Exact alarm registered",
		"request_code", intent.RequestCode,
		"target", intent.Target,
		"trigger_at", triggerAt.Format(time.RFC3339Nano),
		"mode", mode,
		"clock", clock.String(),
		"replaced", replaced,
		"token", reg.Token,
	)

	return nil
}

// fire removes e from the registry and hands its payload to the receiver.
// A stale timer whose slot was replaced in the meantime does nothing.
func (m *Manager) fire(key platform.Key, e *entry) {
	m.mu.Lock()

	current, ok := m.entries[key]
	if !ok || current != e || m.closed {
		m.mu.Unlock()

		return
	}

	delete(m.entries, key)
	m.wg.Add(1)
	m.mu.Unlock()

	defer m.wg.Done()

	reg := e.registration
	delivery := &platform.Delivery{
		TriggerAt:   reg.TriggerAt,
		FiredAt:     time.Now(),
		Target:      reg.Intent.Target,
		Token:       reg.Token,
		Mode:        reg.Mode,
		Payload:     reg.Intent.Payload,
		RequestCode: reg.Intent.RequestCode,
	}

	ctx := logger.WithFields(m.baseCtx, "request_code", delivery.RequestCode, "token", delivery.Token)

	if m.receiver == nil {
		logger.WarnKV(ctx, "Alarm fired without a receiver")

		return
	}

	if err := m.receiver.Receive(ctx, delivery); err != nil {
		logger.ErrorKV(ctx, "Alarm delivery failed", "error", err)
	}
}
