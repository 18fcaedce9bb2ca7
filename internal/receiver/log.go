package receiver

import (
	"context"
	"time"

	"github.com/Soumi0401/SimpleNotification/internal/logger"
	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

// Log records every delivery at info level.
type Log struct{}

// NewLog creates a logging receiver.
func NewLog() *Log {
	return new(Log)
}

// Receive logs the delivery.
func (*Log) Receive(ctx context.Context, d *platform.Delivery) error {
	logger.InfoKV(
		ctx,
		"Alarm delivered",
		"request_code", d.RequestCode,
		"target", d.Target,
		"title", d.Payload.Title,
		"text", d.Payload.Text,
		"mode", d.Mode,
		"trigger_at", d.TriggerAt.Format(time.RFC3339),
		"lateness", d.FiredAt.Sub(d.TriggerAt).String(),
	)

	return nil
}
