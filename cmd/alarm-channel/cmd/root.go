package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Soumi0401/SimpleNotification/internal/config"
	"github.com/Soumi0401/SimpleNotification/internal/service/client"
	"github.com/Soumi0401/SimpleNotification/internal/version"
)

var (
	// options holds the connection flags shared by all subcommands.
	options client.Options
	// schedule holds the scheduleExactAlarm flags.
	schedule client.ScheduleOptions

	// rootCmd represents the base command for calling the alarm channel.
	rootCmd = &cobra.Command{
		Use:   "alarm-channel",
		Short: "Call the alarm method channel of a bridge server.",
	}

	allowedCmd = &cobra.Command{
		Use:   "allowed",
		Short: "Ask whether exact alarms may be scheduled.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Allowed(cmd.Context(), &options)
		},
	}

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Schedule an exact alarm.",
		Long: `Registers an exact alarm. Scheduling the same --id again replaces the
pending alarm. Without --at or --in the alarm fires immediately.`,
		Example: `  alarm-channel schedule --id 1 --in 30m --title Reminder --text "Call back"
  alarm-channel schedule --id 2 --at 2026-10-17T07:30:00+02:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Schedule(cmd.Context(), &options, &schedule)
		},
	}

	invokeCmd = &cobra.Command{
		Use:     "invoke method [json-arguments]",
		Short:   "Invoke any channel method with a JSON object of arguments.",
		Example: `  alarm-channel invoke scheduleExactAlarm '{"id": 3, "time": 1760000000000}'`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arguments string
			if len(args) > 1 {
				arguments = args[1]
			}

			return client.Invoke(cmd.Context(), &options, args[0], arguments)
		},
	}
)

// Execute runs the alarm-channel CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.ServerAddress, "server", "s", "", "bridge server address, overrides server_addr")
	flags.StringVar(&options.Channel, "channel", "", "method channel name")

	scheduleCmd.Flags().Int64Var(&schedule.ID, "id", 0, "alarm id; the same id replaces a pending alarm")
	scheduleCmd.Flags().StringVar(&schedule.At, "at", "", "trigger time in RFC 3339")
	scheduleCmd.Flags().DurationVar(&schedule.In, "in", 0, "trigger time relative to now")
	scheduleCmd.Flags().StringVar(&schedule.Title, "title", "", "notification title")
	scheduleCmd.Flags().StringVar(&schedule.Text, "text", "", "notification text")
	scheduleCmd.MarkFlagsMutuallyExclusive("at", "in")

	rootCmd.AddCommand(allowedCmd, scheduleCmd, invokeCmd)
}
