package cmd

import (
	"fmt"
	"strings"

	"github.com/CosmoTheDev/slack-digest/internal/config"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard that writes a configuration file",
	Long: `Walks you through configuring slack-digest:
  - Slack API token and digest contents (reactions, permalinks, joins)
  - SMTP server and sender address
  - Channel routing: catch-all address and blacklist

Per-channel addresses (channels.map) can be added afterwards with
'slack-digest config edit'.`,
	RunE: runInit,
}

const (
	optReactions   = "reactions"
	optPermalinks  = "permalinks"
	optJoinsLeaves = "joins_leaves"
)

func runInit(cmd *cobra.Command, args []string) error {
	fmt.Println()
	fmt.Println(headerStyle.Render("  slack-digest — daily Slack channel digests by email"))

	// Start from the existing config when there is a valid one.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		cfg = &config.Config{Schedule: config.ScheduleConfig{Expr: config.DefaultScheduleExpr, DaysBack: 1}}
	}

	// --- Step 1: Slack ---
	fmt.Println(headerStyle.Render("  Step 1/3 · Slack"))
	var contents []string
	if cfg.Slack.Reactions {
		contents = append(contents, optReactions)
	}
	if cfg.Slack.Permalinks {
		contents = append(contents, optPermalinks)
	}
	if cfg.Slack.JoinsLeaves {
		contents = append(contents, optJoinsLeaves)
	}
	slackForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Slack API token").
				Description("A bot token with channels:history, channels:read and users:read scopes.").
				Placeholder("xoxb-...").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Slack.Token).
				Validate(required("a Slack token")),
			huh.NewMultiSelect[string]().
				Title("Include in each digest").
				Options(
					huh.NewOption("Reactions", optReactions),
					huh.NewOption("Message permalinks", optPermalinks),
					huh.NewOption("Channel joins and leaves", optJoinsLeaves),
				).
				Value(&contents),
		),
	)
	if err := slackForm.Run(); err != nil {
		return err
	}
	cfg.Slack.Reactions = contains(contents, optReactions)
	cfg.Slack.Permalinks = contains(contents, optPermalinks)
	cfg.Slack.JoinsLeaves = contains(contents, optJoinsLeaves)

	// --- Step 2: Mail ---
	fmt.Println(headerStyle.Render("\n  Step 2/3 · Mail"))
	mailForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("From address").
				Placeholder("slack-digest@example.com").
				Value(&cfg.Mail.FromAddress).
				Validate(required("a sender address")),
			huh.NewInput().
				Title("SMTP server").
				Description("host or host:port (port 25 when omitted)").
				Placeholder("smtp.example.com:587").
				Value(&cfg.Mail.SMTP).
				Validate(required("an SMTP server")),
			huh.NewConfirm().
				Title("Use STARTTLS?").
				Value(&cfg.Mail.UseTLS),
			huh.NewInput().
				Title("SMTP username (optional)").
				Value(&cfg.Mail.Username),
			huh.NewInput().
				Title("SMTP password (optional)").
				Description("Can also be supplied as MAIL_PASSWORD in the environment or .env.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Mail.Password),
		),
	)
	if err := mailForm.Run(); err != nil {
		return err
	}

	// --- Step 3: Routing ---
	fmt.Println(headerStyle.Render("\n  Step 3/3 · Channels"))
	blacklist := strings.Join(cfg.Channels.Blacklist, ", ")
	routeForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Catch-all address (optional)").
				Description("Receives every channel without its own mapping. Leave blank to only digest mapped channels.").
				Placeholder("team@example.com").
				Value(&cfg.Channels.Catchall),
			huh.NewInput().
				Title("Blacklisted channels (optional)").
				Description("Comma-separated channel names that are never digested.").
				Placeholder("random, social").
				Value(&blacklist),
		),
	)
	if err := routeForm.Run(); err != nil {
		return err
	}
	cfg.Channels.Blacklist = splitList(blacklist)

	path := cfgFile
	if path == "" {
		path = config.DefaultConfigFile
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("\n  Configuration written to %s", path)))
	if cfg.Channels.Catchall == "" && len(cfg.Channels.Map) == 0 {
		fmt.Println(warnStyle.Render("  No catch-all and no channel map yet: add channels.map entries before the first run."))
	}
	fmt.Println(dimStyle.Render("  Next: 'slack-digest doctor', then 'slack-digest -n' for a dry run."))
	return nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// splitList parses "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "#")); p != "" {
			out = append(out, p)
		}
	}
	return out
}
