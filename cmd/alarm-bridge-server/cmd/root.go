package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Soumi0401/SimpleNotification/internal/config"
	"github.com/Soumi0401/SimpleNotification/internal/service/server"
	"github.com/Soumi0401/SimpleNotification/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// httpAddress overrides the HTTP listen address.
	httpAddress string
	// permissionFile overrides the permission state file.
	permissionFile string

	// rootCmd represents the base command for running the bridge server.
	rootCmd = &cobra.Command{
		Use:   "alarm-bridge-server [listen-address]",
		Short: "Serve the exact alarm method channel over gRPC and HTTP.",
		Long: `Starts the alarm bridge that answers areExactAlarmsAllowed and
scheduleExactAlarm calls and fires registered alarms at their trigger time.

Only the port from server_addr is used for the gRPC listener (e.g., :50051).
The listen address argument overrides it (e.g., :9090, 0.0.0.0:8080).
The HTTP transport starts only when http_addr or --http is set.
Registered alarms live in memory and are lost on restart.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:     configPath,
				ListenAddress:  listenAddress,
				HTTPAddress:    httpAddress,
				PermissionFile: permissionFile,
			})
		},
	}
)

// Execute runs the alarm-bridge-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&httpAddress, "http", "", "HTTP listen address, overrides http_addr")
	rootCmd.Flags().StringVarP(&permissionFile, "permission-file", "p", "", "path to the exact alarm permission file")
}
