//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	grpcchannel "github.com/Soumi0401/SimpleNotification/internal/api/grpc/channel"
	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	"github.com/Soumi0401/SimpleNotification/internal/config"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
)

// Client calls the alarm method channel over gRPC.
type Client struct {
	// conn is the underlying gRPC connection to the bridge server.
	conn *grpc.ClientConn

	// channel is the method channel name calls are addressed to.
	channel string

	// callTimeout is the default timeout for individual calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for channel calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithChannel addresses calls to another channel name.
func WithChannel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.channel = name
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errRequestRequired is returned when a schedule call has no request.
	errRequestRequired = errors.New("schedule request must be provided")
	// errUnexpectedResult is returned when the channel answers with a non-boolean value.
	errUnexpectedResult = errors.New("unexpected result type")
)

// Dial establishes a gRPC connection to the bridge server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial bridge server: %w", err)
	}

	client := &Client{
		conn:        conn,
		channel:     bridge.ChannelName,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Invoke calls any channel method with loosely-typed arguments.
func (c *Client) Invoke(ctx context.Context, method string, args map[string]any) (*structpb.Value, error) {
	request, err := structpb.NewStruct(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply := new(structpb.Value)
	if err = c.conn.Invoke(callCtx, grpcchannel.FullMethod(c.channel, method), request, reply); err != nil {
		return nil, fmt.Errorf("invoke %s: %w", method, err)
	}

	return reply, nil
}

// AreExactAlarmsAllowed asks whether exact alarms may be scheduled.
func (c *Client) AreExactAlarmsAllowed(ctx context.Context) (bool, error) {
	reply, err := c.Invoke(ctx, bridge.MethodAreExactAlarmsAllowed, nil)
	if err != nil {
		return false, err
	}

	return boolResult(reply)
}

// ScheduleExactAlarm registers an exact alarm on the server.
func (c *Client) ScheduleExactAlarm(ctx context.Context, req *domain.ScheduleRequest) (bool, error) {
	if req == nil {
		return false, errRequestRequired
	}

	reply, err := c.Invoke(ctx, bridge.MethodScheduleExactAlarm, req.Args())
	if err != nil {
		return false, err
	}

	return boolResult(reply)
}

// boolResult extracts a boolean channel result.
func boolResult(v *structpb.Value) (bool, error) {
	result, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%w: %T", errUnexpectedResult, v.GetKind())
	}

	return result.BoolValue, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
