package integration

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	httpchannel "github.com/Soumi0401/SimpleNotification/internal/api/http/channel"
	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	"github.com/Soumi0401/SimpleNotification/internal/config"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	repository "github.com/Soumi0401/SimpleNotification/internal/repository/permission"
	"github.com/Soumi0401/SimpleNotification/internal/service/common"
	"github.com/Soumi0401/SimpleNotification/internal/service/server"
)

// freeAddress reserves a loopback port and releases it for the server under test.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startBridge runs the bridge server with a temporary config until the test ends.
func startBridge(t *testing.T, grpcAddr, httpAddr, permissionPath string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := config.Default()
	cfg.ServerAddress = grpcAddr
	cfg.HTTPAddress = httpAddr
	cfg.PermissionFile = permissionPath
	cfg.Timeout = 5 * time.Second

	require.NoError(t, config.Save(cfgPath, cfg))

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath})
	}()

	t.Cleanup(func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("bridge server did not stop")
		}
	})

	// Wait until both transports accept connections.
	for _, addr := range []string{grpcAddr, httpAddr} {
		require.Eventually(t, func() bool {
			conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
			if err != nil {
				return false
			}

			_ = conn.Close()

			return true
		}, 5*time.Second, 20*time.Millisecond)
	}
}

// postChannel calls a method over the HTTP transport and decodes the body into out.
func postChannel(t *testing.T, httpAddr, method, body string, out any) int {
	t.Helper()

	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPost,
		"http://"+httpAddr+httpchannel.Path(bridge.ChannelName, method),
		strings.NewReader(body),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))

	return resp.StatusCode
}

// TestBridge_Roundtrip starts the real server and exercises both transports and the permission file.
func TestBridge_Roundtrip(t *testing.T) {
	t.Parallel()

	grpcAddr := freeAddress(t)
	httpAddr := freeAddress(t)
	permissionPath := filepath.Join(t.TempDir(), "permission.yaml")

	startBridge(t, grpcAddr, httpAddr, permissionPath)

	ctx := context.Background()

	c, err := common.Dial(ctx, grpcAddr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	// Nothing stored yet: the configured default applies.
	allowed, err := c.AreExactAlarmsAllowed(ctx)
	require.NoError(t, err)
	require.True(t, allowed)

	ok, err := c.ScheduleExactAlarm(ctx, &domain.ScheduleRequest{
		ID:         1,
		TimeMillis: time.Now().Add(time.Hour).UnixMilli(),
		Title:      "Reminder",
		Text:       "Call back",
	})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = c.Invoke(ctx, "cancelAlarm", map[string]any{domain.ArgID: 1})
	require.Equal(t, codes.Unimplemented, status.Code(err))

	_, err = c.Invoke(ctx, bridge.MethodScheduleExactAlarm, map[string]any{domain.ArgID: "one"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	// Revoking the permission is visible on the next query.
	require.NoError(t, repository.NewFileRepository(permissionPath).Save(ctx, &domain.PermissionState{
		Timestamp: time.Now(),
		LastActor: &domain.Actor{Hostname: "test-hostname", Username: "test-user"},
		Allowed:   false,
	}))

	allowed, err = c.AreExactAlarmsAllowed(ctx)
	require.NoError(t, err)
	require.False(t, allowed)

	// The HTTP transport answers from the same bridge.
	var result httpchannel.Response

	code := postChannel(t, httpAddr, bridge.MethodAreExactAlarmsAllowed, `{}`, &result)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, result.Result)

	code = postChannel(t, httpAddr, bridge.MethodScheduleExactAlarm, `{"id": 2, "title": "Later"}`, &result)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, result.Result)

	var failure httpchannel.ErrorResponse

	code = postChannel(t, httpAddr, "cancelAlarm", `{}`, &failure)
	require.Equal(t, http.StatusNotImplemented, code)
	require.NotEmpty(t, failure.Error)

	// Both transports are counted.
	scrape := getMetrics(t, httpAddr)
	require.Contains(t, scrape, `alarm_bridge_channel_calls_total{method="areExactAlarmsAllowed",outcome="ok",transport="grpc"} 2`)
	require.Contains(t, scrape, `alarm_bridge_channel_calls_total{method="unknown",outcome="not_implemented",transport="http"} 1`)

	// The HTTP alarm had no trigger time and fires right away; only id 1 stays pending.
	require.Eventually(t, func() bool {
		return strings.Contains(getMetrics(t, httpAddr), "alarm_bridge_pending_alarms 1\n")
	}, 5*time.Second, 20*time.Millisecond)
}

// getMetrics scrapes the Prometheus endpoint.
func getMetrics(t *testing.T, httpAddr string) string {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+httpAddr+"/metrics", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}
