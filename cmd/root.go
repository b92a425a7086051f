package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd runs a digest when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "slack-digest",
	Short: "Email a daily digest of Slack channel history",
	Long: `slack-digest reads yesterday's messages from your Slack channels,
formats them as a plain-text digest and emails each channel's digest to
the address configured for it.

Get started:
  slack-digest init       Interactive setup wizard
  slack-digest doctor     Verify Slack token and SMTP server
  slack-digest channels   Show which channels go where
  slack-digest -n         Render digests without sending them
  slack-digest            Send yesterday's digests
  slack-digest schedule   Keep running and send digests on a cron schedule`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDigest,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: $CONFIGURATION, ./configuration.yaml, ~/.slack-digest/configuration.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")
	addRunFlags(rootCmd)

	rootCmd.Version = Version
	rootCmd.AddCommand(
		runCmd,
		channelsCmd,
		scheduleCmd,
		doctorCmd,
		configCmd,
		initCmd,
	)
}

func initLogging() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}

// signalContext is cancelled on SIGINT/SIGTERM and, when timeout > 0,
// after timeout.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			fmt.Println("\nShutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if timeout <= 0 {
		return ctx, func() { signal.Stop(sigs); cancel() }
	}
	tctx, tcancel := context.WithTimeout(ctx, timeout)
	return tctx, func() { tcancel(); signal.Stop(sigs); cancel() }
}
