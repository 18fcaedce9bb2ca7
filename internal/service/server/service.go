package server

import (
	"context"
	"fmt"

	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	"github.com/Soumi0401/SimpleNotification/internal/config"
	"github.com/Soumi0401/SimpleNotification/internal/logger"
	"github.com/Soumi0401/SimpleNotification/internal/metrics"
	"github.com/Soumi0401/SimpleNotification/internal/platform"
	"github.com/Soumi0401/SimpleNotification/internal/platform/local"
	"github.com/Soumi0401/SimpleNotification/internal/receiver"
	repository "github.com/Soumi0401/SimpleNotification/internal/repository/permission"
)

// service bundles the alarm manager and the bridge in front of it.
type service struct {
	// alarms is the in-process alarm service.
	alarms *local.Manager
	// bridge dispatches channel calls.
	bridge *bridge.Bridge
	// metrics counts calls and deliveries.
	metrics *metrics.Metrics
}

// endpoints overrides the public receiver APIs; tests point them at fakes.
type endpoints struct {
	telegram string
	line     string
}

// newService wires the alarm manager, its receivers and the bridge.
func newService(
	ctx context.Context,
	cfg *config.Config,
	permissions repository.Repository,
	apis endpoints,
) (*service, error) {
	receivers, err := newReceivers(ctx, cfg, apis)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	alarms := local.NewManager(
		ctx,
		m.Receiver(receivers),
		local.WithCapabilities(cfg.Platform.Capabilities),
		local.WithPermissions(permissions, cfg.Platform.DefaultExactAlarmsAllowed),
	)
	m.TrackPending(alarms)

	logger.InfoKV(
		ctx,
		"Alarm service ready",
		"exact_alarm_permission", cfg.Platform.Capabilities.ExactAlarmPermission,
		"exact_allow_while_idle", cfg.Platform.Capabilities.ExactAllowWhileIdle,
		"receivers", len(receivers),
	)

	return &service{
		alarms:  alarms,
		bridge:  bridge.New(alarms),
		metrics: m,
	}, nil
}

// Close stops pending alarms.
func (s *service) Close() error {
	return s.alarms.Close()
}

// newReceivers builds the delivery chain from the settings. The log receiver is always present.
func newReceivers(ctx context.Context, cfg *config.Config, apis endpoints) (receiver.Fanout, error) {
	receivers := receiver.Fanout{receiver.NewLog()}

	if cfg.Telegram.Enabled() {
		tg, err := receiver.DialTelegram(cfg.Telegram.Token, apis.telegram, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram receiver: %w", err)
		}

		receivers = append(receivers, tg)

		logger.InfoKV(ctx, "Telegram receiver enabled", "chat_id", cfg.Telegram.ChatID)
	}

	if cfg.LINE.Enabled() {
		line, err := receiver.NewLINE(cfg.LINE.ChannelSecret, cfg.LINE.ChannelToken, cfg.LINE.To, apis.line)
		if err != nil {
			return nil, fmt.Errorf("line receiver: %w", err)
		}

		receivers = append(receivers, line)

		logger.InfoKV(ctx, "LINE receiver enabled", "to", cfg.LINE.To)
	}

	return receivers, nil
}

// compile-time check that the in-process manager satisfies the host interface.
var _ platform.AlarmManager = (*local.Manager)(nil)
