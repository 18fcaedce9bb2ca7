package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

// Config holds the settings shared by the bridge binaries.
type Config struct {
	// ServerAddress is the gRPC address of the method channel.
	ServerAddress string `yaml:"server_addr"`
	// HTTPAddress is the optional listen address of the HTTP channel transport.
	HTTPAddress string `yaml:"http_addr,omitempty"`
	// PermissionFile is the path to the YAML file holding the exact-alarm permission.
	PermissionFile string `yaml:"permission_file"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// Log controls the process logger.
	Log LogConfig `yaml:"log"`
	// Platform describes the host alarm service.
	Platform PlatformConfig `yaml:"platform"`
	// Telegram configures the Telegram delivery receiver.
	Telegram TelegramConfig `yaml:"telegram,omitempty"`
	// LINE configures the LINE delivery receiver.
	LINE LINEConfig `yaml:"line,omitempty"`
}

// LogConfig selects level and encoder of the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is console or json.
	Format string `yaml:"format"`
	// AccessLevel is the minimum level of the HTTP access log.
	AccessLevel string `yaml:"access_level,omitempty"`
}

// PlatformConfig describes the in-process alarm service.
type PlatformConfig struct {
	// Capabilities are the feature probes the alarm service answers.
	Capabilities platform.Capabilities `yaml:"capabilities"`
	// DefaultExactAlarmsAllowed is the permission used before anyone sets it.
	DefaultExactAlarmsAllowed bool `yaml:"default_exact_alarms_allowed"`
}

// TelegramConfig configures the Telegram receiver. Token may come from TELEGRAM_BOT_TOKEN.
type TelegramConfig struct {
	Token  string `yaml:"token,omitempty"`
	ChatID int64  `yaml:"chat_id,omitempty"`
}

// Enabled reports whether the receiver has enough settings to run.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// LINEConfig configures the LINE receiver. Secrets may come from LINE_CHANNEL_SECRET and LINE_CHANNEL_TOKEN.
type LINEConfig struct {
	ChannelSecret string `yaml:"channel_secret,omitempty"`
	ChannelToken  string `yaml:"channel_token,omitempty"`
	To            string `yaml:"to,omitempty"`
}

// Enabled reports whether the receiver has enough settings to run.
func (l LINEConfig) Enabled() bool {
	return l.ChannelSecret != "" && l.ChannelToken != "" && l.To != ""
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-bridge-settings.yaml"

	// DefaultPermissionFilename is the default filename for the permission state.
	DefaultPermissionFilename = "alarm-bridge-permission.yaml"

	// DefaultEnvFilename is loaded, when present, before environment overrides are applied.
	DefaultEnvFilename = ".env"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

// Environment variables overriding secrets from the settings file.
const (
	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
	EnvLINESecret     = "LINE_CHANNEL_SECRET"
	EnvLINEToken      = "LINE_CHANNEL_TOKEN"
	EnvLINETo         = "LINE_TO"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
)

// Default returns settings with every optional field filled in.
func Default() *Config {
	return &Config{
		ServerAddress:  "127.0.0.1:50051",
		PermissionFile: DefaultPermissionFilename,
		Timeout:        DefaultTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Platform: PlatformConfig{
			Capabilities: platform.Capabilities{
				ExactAlarmPermission: true,
				ExactAllowWhileIdle:  true,
			},
			DefaultExactAlarmsAllowed: true,
		},
	}
}

// Load reads configuration from the provided path, applies environment
// overrides and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	// Fields missing from the file keep their defaults.
	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := ApplyEnv(cfg, DefaultEnvFilename); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes Settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may carry bot tokens.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ApplyEnv loads envFile when it exists and copies receiver secrets from the
// environment into cfg. Variables already set in the process win over the file.
func ApplyEnv(cfg *Config, envFile string) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvTelegramToken); v != "" {
		cfg.Telegram.Token = v
	}

	if v := os.Getenv(EnvTelegramChatID); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTelegramChatID, err)
		}

		cfg.Telegram.ChatID = chatID
	}

	if v := os.Getenv(EnvLINESecret); v != "" {
		cfg.LINE.ChannelSecret = v
	}

	if v := os.Getenv(EnvLINEToken); v != "" {
		cfg.LINE.ChannelToken = v
	}

	if v := os.Getenv(EnvLINETo); v != "" {
		cfg.LINE.To = v
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http socket: %w", err)
		}
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	// Set default permission file if not specified
	if settings.PermissionFile == "" {
		settings.PermissionFile = DefaultPermissionFilename
	}

	return nil
}
