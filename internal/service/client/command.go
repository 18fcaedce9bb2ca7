package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Soumi0401/SimpleNotification/internal/config"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	"github.com/Soumi0401/SimpleNotification/internal/logger"
	"github.com/Soumi0401/SimpleNotification/internal/service/common"
)

// Options configures the alarm-channel commands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Channel overrides the method channel name.
	Channel string
}

// ScheduleOptions describes one exact alarm to register.
type ScheduleOptions struct {
	// At is an absolute RFC 3339 trigger time.
	At string

	// Title and Text form the notification shown when the alarm fires.
	Title string
	Text  string

	// In is a trigger time relative to now. Mutually exclusive with At.
	In time.Duration

	// ID is the alarm slot; scheduling the same id again replaces the alarm.
	ID int64
}

var (
	// errConflictingTime is returned when both an absolute and a relative trigger time are given.
	errConflictingTime = errors.New("--at and --in are mutually exclusive")
	// errIDOutOfRange is returned for ids that do not fit the alarm slot range.
	errIDOutOfRange = errors.New("id out of 32-bit range")
	// errMethodRequired is returned when invoke is called without a method name.
	errMethodRequired = errors.New("method must be provided")
)

// Allowed asks the bridge whether exact alarms may be scheduled.
func Allowed(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(ctx context.Context, client *common.Client) error {
		allowed, err := client.AreExactAlarmsAllowed(ctx)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Exact alarm permission", "allowed", allowed)

		return nil
	})
}

// Schedule registers one exact alarm on the bridge.
func Schedule(ctx context.Context, opts *Options, schedule *ScheduleOptions) error {
	req, err := buildRequest(schedule, time.Now())
	if err != nil {
		return err
	}

	return withClient(ctx, opts, func(ctx context.Context, client *common.Client) error {
		ok, err := client.ScheduleExactAlarm(ctx, req)
		if err != nil {
			return err
		}

		logger.InfoKV(
			ctx,
			"Alarm scheduled",
			"id", req.ID,
			"fire_at", req.FireAt().Format(time.RFC3339Nano),
			"title", req.Title,
			"result", ok,
		)

		return nil
	})
}

// Invoke calls an arbitrary channel method with JSON object arguments.
func Invoke(ctx context.Context, opts *Options, method, arguments string) error {
	if method == "" {
		return errMethodRequired
	}

	args, err := parseArguments(arguments)
	if err != nil {
		return err
	}

	return withClient(ctx, opts, func(ctx context.Context, client *common.Client) error {
		reply, err := client.Invoke(ctx, method, args)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Channel reply", "method", method, "result", formatReply(reply))

		return nil
	})
}

// withClient loads settings, dials the bridge and runs fn with the connection.
func withClient(
	ctx context.Context,
	opts *Options,
	fn func(context.Context, *common.Client) error,
) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	ctx = logger.WithName(ctx, "alarm-channel")

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(
		ctx,
		serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithChannel(opts.Channel),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to alarm bridge", "server_address", serverAddress)

	return fn(ctx, client)
}

// buildRequest resolves the trigger time and validates the slot id.
// Without --at or --in the alarm fires immediately.
func buildRequest(opts *ScheduleOptions, now time.Time) (*domain.ScheduleRequest, error) {
	if opts.ID < math.MinInt32 || opts.ID > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d", errIDOutOfRange, opts.ID)
	}

	fireAt := now

	switch {
	case opts.At != "" && opts.In != 0:
		return nil, errConflictingTime
	case opts.At != "":
		at, err := time.Parse(time.RFC3339, opts.At)
		if err != nil {
			return nil, fmt.Errorf("parse --at: %w", err)
		}

		fireAt = at
	case opts.In != 0:
		fireAt = now.Add(opts.In)
	}

	title := opts.Title
	if title == "" {
		title = domain.DefaultTitle
	}

	return &domain.ScheduleRequest{
		ID:         int32(opts.ID),
		TimeMillis: fireAt.UnixMilli(),
		Title:      title,
		Text:       opts.Text,
	}, nil
}

// parseArguments decodes a JSON object into channel arguments. Empty input means no arguments.
func parseArguments(arguments string) (map[string]any, error) {
	if arguments == "" {
		return nil, nil
	}

	args := new(structpb.Struct)
	if err := protojson.Unmarshal([]byte(arguments), args); err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}

	return args.AsMap(), nil
}

// formatReply renders a channel result as compact JSON.
func formatReply(v *structpb.Value) string {
	out, err := protojson.Marshal(v)
	if err != nil {
		return v.String()
	}

	return string(out)
}
