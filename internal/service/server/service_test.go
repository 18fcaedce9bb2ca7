package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	"github.com/Soumi0401/SimpleNotification/internal/config"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
)

var errTestLoad = errors.New("test load error")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// state is the permission state to return from Load operations.
	state *domain.PermissionState
	// loadErr is the error to return from Load operations.
	loadErr error
}

// Load retrieves the current state from the memory repository.
func (m *memoryRepository) Load(context.Context) (*domain.PermissionState, error) {
	return m.state, m.loadErr
}

// Save stores the provided state in memory.
func (m *memoryRepository) Save(_ context.Context, s *domain.PermissionState) error {
	m.state = s

	return nil
}

// TestNewService_Permission wires the stored permission through the bridge.
func TestNewService_Permission(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.Default()

	repo := &memoryRepository{state: &domain.PermissionState{Allowed: false}}

	svc, err := newService(ctx, cfg, repo, endpoints{})
	require.NoError(t, err)

	defer func() {
		_ = svc.Close()
	}()

	allowed, err := svc.bridge.Dispatch(ctx, bridge.MethodAreExactAlarmsAllowed, nil)
	require.NoError(t, err)
	require.Equal(t, false, allowed)

	repo.state = &domain.PermissionState{Allowed: true}

	allowed, err = svc.bridge.Dispatch(ctx, bridge.MethodAreExactAlarmsAllowed, nil)
	require.NoError(t, err)
	require.Equal(t, true, allowed)

	// Storage failures propagate to the caller.
	repo.loadErr = errTestLoad

	_, err = svc.bridge.Dispatch(ctx, bridge.MethodAreExactAlarmsAllowed, nil)
	require.ErrorIs(t, err, errTestLoad)
}

// TestNewService_SchedulesThroughManager checks that a scheduled alarm is registered in idle-aware mode.
func TestNewService_SchedulesThroughManager(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()

		svc, err := newService(ctx, config.Default(), nil, endpoints{})
		require.NoError(t, err)

		at := time.Now().Add(time.Hour).UnixMilli()

		for _, title := range []string{"first", "second"} {
			ok, err := svc.bridge.Dispatch(ctx, bridge.MethodScheduleExactAlarm, map[string]any{
				domain.ArgID:         float64(4),
				domain.ArgTimeMillis: float64(at),
				domain.ArgTitle:      title,
			})
			require.NoError(t, err)
			require.Equal(t, true, ok)
		}

		pending := svc.alarms.Pending()
		require.Len(t, pending, 1)
		require.Equal(t, "second", pending[0].Intent.Payload.Title)
		require.Equal(t, bridge.ReceiverTarget, pending[0].Intent.Target)

		require.NoError(t, svc.Close())
	})
}

// TestNewService_TelegramReceiver delivers a fired alarm to a fake bot API.
func TestNewService_TelegramReceiver(t *testing.T) {
	t.Parallel()

	var sent atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"alarm","username":"alarm_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			sent.Add(1)
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Telegram = config.TelegramConfig{Token: "test-token", ChatID: 42}

	ctx := context.Background()

	svc, err := newService(ctx, cfg, nil, endpoints{telegram: srv.URL + "/bot%s/%s"})
	require.NoError(t, err)

	// A trigger time in the past fires right away.
	_, err = svc.bridge.Dispatch(ctx, bridge.MethodScheduleExactAlarm, map[string]any{domain.ArgText: "now"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sent.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, svc.Close())
}

// TestNewService_BadReceiverSettings fails fast on receivers that cannot start.
func TestNewService_BadReceiverSettings(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.LINE = config.LINEConfig{ChannelSecret: "s", ChannelToken: "t", To: "U1"}

	_, err := newService(context.Background(), cfg, nil, endpoints{line: "://bad"})
	require.Error(t, err)
}

// TestResolveListenAddress covers overrides, port extraction and invalid input.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("bridge.local:50051", "")
	require.NoError(t, err)
	require.Equal(t, ":50051", addr)

	addr, err = resolveListenAddress("bridge.local:50051", "127.0.0.1:9090")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}
