package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcchannel "github.com/Soumi0401/SimpleNotification/internal/api/grpc/channel"
	httpchannel "github.com/Soumi0401/SimpleNotification/internal/api/http/channel"
	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	"github.com/Soumi0401/SimpleNotification/internal/config"
	"github.com/Soumi0401/SimpleNotification/internal/logger"
	repository "github.com/Soumi0401/SimpleNotification/internal/repository/permission"
	"github.com/Soumi0401/SimpleNotification/internal/version"
)

// Options controls the alarm-bridge-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress provides an optional listen address override for the HTTP transport.
	HTTPAddress string
	// PermissionFile overrides the permission state file from the settings.
	PermissionFile string

	// telegramEndpoint and lineEndpoint redirect receivers in tests.
	telegramEndpoint string
	lineEndpoint     string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// shutdownTimeout bounds the HTTP server drain on exit.
const shutdownTimeout = 5 * time.Second

// Run starts the channel transports and blocks until ctx is canceled or a server stops.
//
//nolint:funlen // Linear wiring of two transports reads best in one place.
func Run(ctx context.Context, opts *Options) error {
	// Load configuration first to get server settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger.Configure(settings.Log.Level, settings.Log.Format)

	// Name the logger after Configure so the context carries the configured encoder.
	ctx = logger.WithName(ctx, "alarm-bridge-server")
	logger.InfoKV(ctx, "Starting alarm bridge", version.KV()...)

	// Use PermissionFile from config unless overridden by command line option.
	permissionFile := settings.PermissionFile
	if opts.PermissionFile != "" {
		permissionFile = opts.PermissionFile
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	httpAddress := settings.HTTPAddress
	if opts.HTTPAddress != "" {
		httpAddress = opts.HTTPAddress
	}

	svc, err := newService(
		ctx,
		settings,
		repository.NewFileRepository(permissionFile),
		endpoints{telegram: opts.telegramEndpoint, line: opts.lineEndpoint},
	)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	defer func() {
		_ = svc.Close()
	}()

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpcchannel.NewServer(bridge.ChannelName, svc.metrics.Dispatcher("grpc", svc.bridge)).ServerOption(),
		grpc.ChainStreamInterceptor(grpcchannel.LoggingStreamInterceptor),
	)

	var httpServer *http.Server

	if httpAddress != "" {
		router := httpchannel.NewRouter(
			bridge.ChannelName,
			svc.metrics.Dispatcher("http", svc.bridge),
			accessLogger(settings),
		)
		router.GET("/metrics", echo.WrapHandler(svc.metrics.Handler()))

		httpServer = &http.Server{
			Addr:              httpAddress,
			Handler:           router,
			ReadHeaderTimeout: settings.Timeout,
		}
	}

	logger.InfoKV(
		ctx,
		"Alarm bridge listening",
		"channel", bridge.ChannelName,
		"grpc_address", listenAddress,
		"http_address", httpAddress,
		"permission_file", permissionFile,
	)

	// errs collects the first failure of either transport.
	errs := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errs <- fmt.Errorf("serve gRPC: %w", err)

			return
		}

		errs <- nil
	}()

	if httpServer != nil {
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- fmt.Errorf("serve HTTP: %w", err)

				return
			}

			errs <- nil
		}()
	}

	var runErr error

	select {
	case <-ctx.Done():
	case runErr = <-errs:
	}

	logger.Info(ctx, "Shutting down alarm bridge")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "HTTP shutdown failed", "error", err)
		}
	}

	grpcServer.GracefulStop()
	logger.Info(ctx, "Alarm bridge stopped")

	return runErr
}

// accessLogger returns the logger for HTTP access lines, pinned to the configured level.
func accessLogger(settings *config.Config) *zap.SugaredLogger {
	level, ok := logger.ParseLogLevel(settings.Log.AccessLevel)
	if !ok {
		return logger.Logger()
	}

	return logger.Logger().WithOptions(logger.WithLevel(level))
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	// Extract port from config address (e.g., "server.example.com:8080" -> ":8080").
	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Return port-only listen address to bind on all interfaces.
	return ":" + port, nil
}
