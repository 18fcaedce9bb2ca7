package alarm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Argument keys of the scheduleExactAlarm call.
const (
	ArgTimeMillis = "timeMillis"
	ArgID         = "id"
	ArgTitle      = "title"
	ArgText       = "text"
)

// DefaultTitle is the notification title used when the caller sends none.
const DefaultTitle = "通知"

// ErrInvalidArgument is returned when an argument is present but has a type
// that cannot be read as the expected value.
var ErrInvalidArgument = errors.New("invalid argument")

// Payload is handed to the receiver when an alarm fires.
type Payload struct {
	// Title is the notification title.
	Title string `json:"title"`
	// Text is the notification body.
	Text string `json:"text"`
}

// Message joins title and text the way push receivers display them.
func (p Payload) Message() string {
	if p.Text == "" {
		return p.Title
	}

	return p.Title + "\n" + p.Text
}

// ScheduleRequest is a decoded scheduleExactAlarm call.
type ScheduleRequest struct {
	// ID distinguishes alarms; it doubles as the pending intent request code.
	ID int32
	// TimeMillis is the wall-clock trigger time in epoch milliseconds.
	TimeMillis int64
	// Title is the notification title.
	Title string
	// Text is the notification body.
	Text string
}

// FireAt returns the trigger time as a time.Time.
func (r *ScheduleRequest) FireAt() time.Time {
	return time.UnixMilli(r.TimeMillis)
}

// Payload returns the data delivered with the alarm.
func (r *ScheduleRequest) Payload() Payload {
	return Payload{
		Title: r.Title,
		Text:  r.Text,
	}
}

// ParseScheduleRequest reads a request from loosely-typed channel arguments.
// Absent or nil arguments take their defaults; a nil map yields an all-default request.
func ParseScheduleRequest(args map[string]any) (*ScheduleRequest, error) {
	millis, err := int64Arg(args, ArgTimeMillis)
	if err != nil {
		return nil, err
	}

	id, err := int64Arg(args, ArgID)
	if err != nil {
		return nil, err
	}

	if id < math.MinInt32 || id > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %s %d does not fit in 32 bits", ErrInvalidArgument, ArgID, id)
	}

	title, err := stringArg(args, ArgTitle, DefaultTitle)
	if err != nil {
		return nil, err
	}

	text, err := stringArg(args, ArgText, "")
	if err != nil {
		return nil, err
	}

	return &ScheduleRequest{
		ID:         int32(id),
		TimeMillis: millis,
		Title:      title,
		Text:       text,
	}, nil
}

// Args renders the request back into channel arguments.
func (r *ScheduleRequest) Args() map[string]any {
	return map[string]any{
		ArgTimeMillis: r.TimeMillis,
		ArgID:         r.ID,
		ArgTitle:      r.Title,
		ArgText:       r.Text,
	}
}

// stringArg reads a string argument, falling back to def when absent.
func stringArg(args map[string]any, key, def string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgument, key, raw)
	}

	return value, nil
}

// int64Arg reads an integral argument, falling back to zero when absent.
// JSON and protobuf Struct decode numbers as float64, so integral floats are accepted.
//
//nolint:cyclop // One case per numeric kind reads better than a reflection helper.
func int64Arg(args map[string]any, key string) (int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, nil
	}

	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s %d overflows int64", ErrInvalidArgument, key, v)
		}

		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s %d overflows int64", ErrInvalidArgument, key, v)
		}

		return int64(v), nil
	case float32:
		return floatToInt64(key, float64(v))
	case float64:
		return floatToInt64(key, v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidArgument, key, err)
		}

		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidArgument, key, raw)
	}
}

// floatToInt64 accepts only integral floats within int64 range.
func floatToInt64(key string, v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidArgument, key, v)
	}

	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s %v overflows int64", ErrInvalidArgument, key, v)
	}

	return int64(v), nil
}
