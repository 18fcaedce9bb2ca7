package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Soumi0401/SimpleNotification/internal/config"
	"github.com/Soumi0401/SimpleNotification/internal/service/permission"
	"github.com/Soumi0401/SimpleNotification/internal/version"
)

var (
	// options holds the flags shared by all subcommands.
	options permission.Options

	// rootCmd represents the base command for managing the exact alarm permission.
	rootCmd = &cobra.Command{
		Use:   "alarm-permission",
		Short: "Grant, revoke or inspect the exact alarm permission.",
		Long: `Edits the permission file read by alarm-bridge-server. A running server
answers areExactAlarmsAllowed from the new state on the next call.`,
	}

	grantCmd = &cobra.Command{
		Use:   "grant",
		Short: "Allow exact alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return permission.Set(cmd.Context(), &options, true)
		},
	}

	revokeCmd = &cobra.Command{
		Use:   "revoke",
		Short: "Deny exact alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return permission.Set(cmd.Context(), &options, false)
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the effective permission.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return permission.Status(cmd.Context(), &options)
		},
	}
)

// Execute runs the alarm-permission CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.PermissionFile, "permission-file", "p", "", "path to the exact alarm permission file")

	rootCmd.AddCommand(grantCmd, revokeCmd, statusCmd)
}
