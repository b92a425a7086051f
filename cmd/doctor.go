package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/config"
	"github.com/CosmoTheDev/slack-digest/internal/notify"
	"github.com/CosmoTheDev/slack-digest/internal/slackapi"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify configuration, Slack token and SMTP server",
	Long: `Checks that the configuration is valid, the Slack token is accepted,
the SMTP server can be reached (with STARTTLS and login when configured)
and the schedule expression parses. Nothing is sent.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("=== slack-digest doctor ===")
	fmt.Println()

	fmt.Print("Configuration ............ ")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		return fmt.Errorf("configuration is invalid")
	}
	p, _ := config.ConfigPath(cfgFile)
	fmt.Printf("OK (%s)\n", p)

	allOK := true

	fmt.Print("Slack token .............. ")
	if id, err := slackapi.New(cfg.Slack.Token).AuthTest(ctx); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%s as %s)\n", id.Team, id.User)
	}

	fmt.Print("SMTP server .............. ")
	if err := notify.NewEmail(cfg.Mail).Verify(ctx); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%s, tls=%v, auth=%v)\n", cfg.Mail.SMTP, cfg.Mail.UseTLS, cfg.Mail.Username != "")
	}

	fmt.Print("Schedule ................. ")
	if _, err := cron.ParseStandard(cfg.Schedule.Expr); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%s, %d day(s) back)\n", cfg.Schedule.Expr, cfg.Schedule.DaysBack)
	}

	fmt.Print("Routing .................. ")
	switch {
	case cfg.Channels.Catchall == "" && len(cfg.Channels.Map) == 0:
		fmt.Println("WARN (no channels.map and no channels.catchall: nothing will be sent)")
		allOK = false
	case cfg.Channels.Catchall == "":
		fmt.Printf("OK (%d mapped, %d blacklisted, no catch-all)\n", len(cfg.Channels.Map), len(cfg.Channels.Blacklist))
	default:
		fmt.Printf("OK (%d mapped, %d blacklisted, catch-all %s)\n", len(cfg.Channels.Map), len(cfg.Channels.Blacklist), cfg.Channels.Catchall)
	}

	fmt.Print("Run notifications ........ ")
	if notify.NewDispatcher(cfg.Notify).IsAnyConfigured() {
		fmt.Println("OK")
	} else {
		fmt.Println("disabled (optional)")
	}

	fmt.Println()
	if allOK {
		fmt.Println(successStyle.Render("All checks passed — slack-digest is ready!"))
	} else {
		fmt.Println(warnStyle.Render("Some checks failed — fix the configuration and re-run 'slack-digest doctor'."))
	}
	return nil
}
