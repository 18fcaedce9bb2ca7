//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestDial_Options applies channel and timeout options.
func TestDial_Options(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "127.0.0.1:1", WithChannel("custom/channel"), WithCallTimeout(time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	require.Equal(t, "custom/channel", c.channel)
	require.Equal(t, time.Second, c.callTimeout)

	// Zero values keep the defaults.
	WithChannel("")(c)
	WithCallTimeout(0)(c)
	require.Equal(t, "custom/channel", c.channel)
	require.Equal(t, time.Second, c.callTimeout)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestScheduleExactAlarm_NilRequest asserts that a nil request is rejected locally.
func TestScheduleExactAlarm_NilRequest(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.ScheduleExactAlarm(context.Background(), nil)
	require.Error(t, err)
}

// TestBoolResult accepts booleans only.
func TestBoolResult(t *testing.T) {
	t.Parallel()

	got, err := boolResult(structpb.NewBoolValue(true))
	require.NoError(t, err)
	require.True(t, got)

	_, err = boolResult(structpb.NewStringValue("true"))
	require.ErrorIs(t, err, errUnexpectedResult)

	_, err = boolResult(nil)
	require.ErrorIs(t, err, errUnexpectedResult)
}

// TestClose_Nil tolerates unopened clients.
func TestClose_Nil(t *testing.T) {
	t.Parallel()

	require.NoError(t, (*Client)(nil).Close())
	require.NoError(t, new(Client).Close())
}
