package permission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Soumi0401/SimpleNotification/internal/config"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	"github.com/Soumi0401/SimpleNotification/internal/logger"
	repository "github.com/Soumi0401/SimpleNotification/internal/repository/permission"
	"github.com/Soumi0401/SimpleNotification/internal/service/common"
)

// Options configures the alarm-permission commands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// PermissionFile overrides the permission state file from the settings.
	PermissionFile string
}

// Set grants or revokes the exact-alarm permission. A running bridge server
// picks the change up on its next permission query.
func Set(ctx context.Context, opts *Options, allowed bool) error {
	repo, _, err := open(opts)
	if err != nil {
		return err
	}

	ctx = logger.WithName(ctx, "alarm-permission")

	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	state, err := store(ctx, repo, actor, allowed, time.Now())
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Exact alarm permission updated", "state", describe(state), "file", repo.Path())

	return nil
}

// Status logs the effective exact-alarm permission.
func Status(ctx context.Context, opts *Options) error {
	repo, cfg, err := open(opts)
	if err != nil {
		return err
	}

	ctx = logger.WithName(ctx, "alarm-permission")

	state, err := effective(ctx, repo, cfg)
	if err != nil {
		return err
	}

	logger.InfoKV(
		ctx,
		"Exact alarm permission",
		"state", describe(state),
		"gated", cfg.Platform.Capabilities.ExactAlarmPermission,
		"file", repo.Path(),
	)

	return nil
}

// open loads the settings and the permission repository they point at.
func open(opts *Options) (*repository.FileRepository, *config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	path := cfg.PermissionFile
	if opts.PermissionFile != "" {
		path = opts.PermissionFile
	}

	return repository.NewFileRepository(path), cfg, nil
}

// store writes a new permission state attributed to actor.
func store(
	ctx context.Context,
	repo repository.Repository,
	actor *domain.Actor,
	allowed bool,
	now time.Time,
) (*domain.PermissionState, error) {
	state := &domain.PermissionState{
		Timestamp: now.UTC(),
		LastActor: actor.Clone(),
		Allowed:   allowed,
	}

	if err := repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save permission: %w", err)
	}

	return state, nil
}

// effective returns the stored state, or the configured default when nothing is stored yet.
func effective(ctx context.Context, repo repository.Repository, cfg *config.Config) (*domain.PermissionState, error) {
	state, err := repo.Load(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.PermissionState{Allowed: cfg.Platform.DefaultExactAlarmsAllowed}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("load permission: %w", err)
	}

	return state, nil
}

// describe renders a state for log output.
func describe(state *domain.PermissionState) string {
	status := "revoked"
	if state.Allowed {
		status = "granted"
	}

	if state.Timestamp.IsZero() {
		return status + " (default)"
	}

	return fmt.Sprintf("%s by %s (%s)", status, state.LastActor, state.Timestamp.Format(time.RFC3339))
}
