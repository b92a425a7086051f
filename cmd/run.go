package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/config"
	"github.com/CosmoTheDev/slack-digest/internal/digest"
	"github.com/CosmoTheDev/slack-digest/internal/notify"
	"github.com/CosmoTheDev/slack-digest/internal/slackapi"
	"github.com/spf13/cobra"
)

var (
	dryRun     bool
	daysBack   int
	runTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build and send the digests once (default command)",
	Long: `Fetches the history of every routed channel for the last --daysback
whole UTC days (ending at midnight today), renders one digest per channel
and emails it to the channel's recipient. Channels with no messages are
skipped.

Examples:
  slack-digest run              # yesterday's digests
  slack-digest run -d 7         # the last 7 days
  slack-digest run -n -v        # render only, print sizes`,
	RunE: runDigest,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().BoolVarP(&dryRun, "dryrun", "n", false,
		"render digests but do not send them")
	c.Flags().IntVarP(&daysBack, "daysback", "d", 1,
		"number of days back to digest")
	c.Flags().DurationVar(&runTimeout, "timeout", 0,
		"abort the run after this long (0 = no limit)")
}

func runDigest(cmd *cobra.Command, args []string) error {
	if err := config.ValidateDaysBack(daysBack); err != nil {
		return err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(runTimeout)
	defer cancel()

	digests, err := executeDigest(ctx, cfg, daysBack, dryRun, time.Now())
	if err != nil {
		return err
	}
	if dryRun {
		printDryRun(cmd.OutOrStdout(), digests)
	}
	return nil
}

// executeDigest runs the pipeline once and reports the outcome to the
// configured notification channels.
func executeDigest(ctx context.Context, cfg *config.Config, days int, dry bool, now time.Time) ([]digest.ChannelDigest, error) {
	slog.Info("Running slack-digest",
		"day", now.UTC().Format("2006-01-02"),
		"days_back", days,
		"reactions", cfg.Slack.Reactions,
		"permalinks", cfg.Slack.Permalinks,
		"joins_leaves", cfg.Slack.JoinsLeaves,
		"dry_run", dry,
	)

	var mailer digest.Mailer
	if !dry {
		mailer = notify.NewEmail(cfg.Mail)
	}
	chat := slackapi.New(cfg.Slack.Token)
	pipeline := digest.NewPipeline(chat, mailer, digest.OptionsFromConfig(cfg, days, dry))

	digests, err := pipeline.Run(ctx, now)

	dispatcher := notify.NewDispatcher(cfg.Notify)
	notifyCtx := context.WithoutCancel(ctx)
	if err != nil {
		dispatcher.Notify(notifyCtx, notify.Event{
			Type:  notify.EventDigestFailed,
			Title: "slack-digest run failed",
			Body:  err.Error(),
		})
		return digests, err
	}

	sent := 0
	for _, d := range digests {
		if d.Sent {
			sent++
		}
	}
	slog.Info("Digest run complete", "channels", len(digests), "sent", sent)
	dispatcher.Notify(notifyCtx, notify.Event{
		Type:     notify.EventDigestCompleted,
		Title:    "slack-digest run complete",
		Body:     fmt.Sprintf("%d digests sent for %d channels", sent, len(digests)),
		Metadata: map[string]any{"channels": len(digests), "sent": sent, "dry_run": dry},
	})
	return digests, nil
}

func printDryRun(w io.Writer, digests []digest.ChannelDigest) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("  Dry run: nothing was sent"))
	for _, d := range digests {
		line := fmt.Sprintf("  #%-24s -> %-32s %6d bytes", d.Channel, d.Recipient, d.BodyLength())
		if d.BodyLength() == 0 {
			fmt.Fprintln(w, dimStyle.Render(line+"  (empty, would be skipped)"))
			continue
		}
		fmt.Fprintln(w, line)
	}
	if len(digests) == 0 {
		fmt.Fprintln(w, warnStyle.Render("  No channels routed. Check channels.map / channels.catchall."))
	}
}
