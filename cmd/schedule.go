package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	scheduleExpr   string
	scheduleLogDir string
	scheduleNow    bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Keep running and send digests on a cron schedule",
	Long: `Starts a long-running process that sends the digests whenever the
cron expression fires. Expressions are evaluated in UTC, like the digest
window itself.

Example expressions:
  "5 0 * * *"   every day at 00:05 UTC (default)
  "0 7 * * 1"   Mondays at 07:00 UTC (pair with schedule.daysback: 7)
  "@daily"      once per day at midnight

The config is read once at startup; restart to apply changes.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleExpr, "cron", "",
		"cron expression (overrides schedule.expr)")
	scheduleCmd.Flags().StringVar(&scheduleLogDir, "log-dir", "",
		"also write logs to this directory")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "run-now", false,
		"send the digests once at startup before waiting for the schedule")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if scheduleExpr != "" {
		cfg.Schedule.Expr = scheduleExpr
	}

	if scheduleLogDir != "" {
		logFilePath, closeLog, err := setupScheduleFileLogger(scheduleLogDir)
		if err != nil {
			return fmt.Errorf("initialising schedule logger: %w", err)
		}
		defer closeLog()
		slog.Info("schedule logger initialised", "file", logFilePath)
	}

	ctx, cancel := signalContext(0)
	defer cancel()

	runOnce := func() {
		if _, err := executeDigest(ctx, cfg, cfg.Schedule.DaysBack, false, time.Now()); err != nil {
			slog.Error("scheduled digest failed", "error", err)
		}
	}

	c := cron.New(cron.WithLocation(time.UTC))
	entryID, err := c.AddFunc(cfg.Schedule.Expr, runOnce)
	if err != nil {
		return &config.Error{Field: "schedule.expr", Reason: fmt.Sprintf("is not a valid cron expression: %v", err)}
	}

	c.Start()
	next := c.Entry(entryID).Schedule.Next(time.Now().UTC())
	fmt.Printf("slack-digest scheduler starting\n")
	fmt.Printf("  Schedule  : %s (UTC)\n", cfg.Schedule.Expr)
	fmt.Printf("  Days back : %d\n", cfg.Schedule.DaysBack)
	fmt.Printf("  Next run  : %s\n\n", next.Format(time.RFC3339))
	fmt.Println("Press Ctrl+C to stop gracefully.")
	slog.Info("scheduler started", "expr", cfg.Schedule.Expr, "next", next)

	if scheduleNow {
		runOnce()
	}

	<-ctx.Done()
	// Wait for a digest already in flight.
	<-c.Stop().Done()
	fmt.Println("Scheduler stopped.")
	return nil
}

func setupScheduleFileLogger(logDir string) (string, func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating log dir %s: %w", logDir, err)
	}

	ts := time.Now().UTC().Format("20060102-150405")
	runLogPath := filepath.Join(logDir, fmt.Sprintf("schedule-%s.log", ts))
	runFile, err := os.OpenFile(runLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("opening run log file: %w", err)
	}

	latestPath := filepath.Join(logDir, "schedule.log")
	latestFile, err := os.OpenFile(latestPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = runFile.Close()
		return "", nil, fmt.Errorf("opening latest log file: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, runFile, latestFile), &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	slog.SetDefault(slog.New(handler))

	cleanup := func() {
		_ = latestFile.Close()
		_ = runFile.Close()
	}
	return runLogPath, cleanup, nil
}
