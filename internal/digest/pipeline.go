package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/config"
)

// HistoryLimit caps the number of messages fetched per channel per run.
const HistoryLimit = 1000

// ChatClient is the subset of the Slack API the pipeline needs.
type ChatClient interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListChannels(ctx context.Context) ([]Channel, error)
	// FetchHistory returns messages inside w, newest first, at most limit.
	FetchHistory(ctx context.Context, channelID string, w Window, limit int) ([]Message, error)
	Permalink(ctx context.Context, channelID, ts string) (string, error)
}

// Mailer delivers one digest.
type Mailer interface {
	SendMail(ctx context.Context, from, to, subject, body string) error
}

// Options configures a single pipeline run.
type Options struct {
	Routing     RoutingConfig
	Render      RenderOptions
	DaysBack    int
	FromAddress string
	// DryRun renders every digest but sends nothing.
	DryRun bool
}

// OptionsFromConfig builds run options from a validated config.
func OptionsFromConfig(cfg *config.Config, daysBack int, dryRun bool) Options {
	return Options{
		Routing:     RoutingFromConfig(cfg.Channels),
		Render:      RenderOptionsFromConfig(cfg.Slack),
		DaysBack:    daysBack,
		FromAddress: cfg.Mail.FromAddress,
		DryRun:      dryRun,
	}
}

// Pipeline fetches, renders and mails the digests for one run.
type Pipeline struct {
	chat   ChatClient
	mailer Mailer
	opts   Options
}

// NewPipeline creates a Pipeline. mailer may be nil when opts.DryRun is set.
func NewPipeline(chat ChatClient, mailer Mailer, opts Options) *Pipeline {
	return &Pipeline{chat: chat, mailer: mailer, opts: opts}
}

// Run digests the window ending before now's UTC day. It returns one
// ChannelDigest per routed channel, in routing order. The first chat or
// mail error aborts the run; digests completed so far are returned with it.
func (p *Pipeline) Run(ctx context.Context, now time.Time) ([]ChannelDigest, error) {
	window, err := ComputeWindow(now, p.opts.DaysBack)
	if err != nil {
		return nil, err
	}
	if !p.opts.DryRun && p.mailer == nil {
		return nil, fmt.Errorf("digest: no mailer configured")
	}
	slog.Info("Digesting messages", "window", window.String(), "days_back", p.opts.DaysBack)

	channels, err := p.chat.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	users, err := p.chat.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	dir := NewDirectory(users)
	routes := RouteChannels(channels, p.opts.Routing)

	permalink := func(channelID, ts string) (string, error) {
		return p.chat.Permalink(ctx, channelID, ts)
	}

	digests := make([]ChannelDigest, 0, len(routes))
	for _, r := range routes {
		name := r.Channel.Name
		slog.Info("Digesting channel", "channel", name)

		msgs, err := p.chat.FetchHistory(ctx, r.Channel.ID, window, HistoryLimit)
		if err != nil {
			return digests, fmt.Errorf("fetching history for #%s: %w", name, err)
		}
		body, err := Render(r.Channel.ID, msgs, dir, p.opts.Render, permalink)
		if err != nil {
			return digests, fmt.Errorf("rendering #%s: %w", name, err)
		}

		d := ChannelDigest{Channel: name, Recipient: r.Recipient, Body: body}
		switch {
		case body == "":
			slog.Info("No messages to digest", "channel", name)
		case p.opts.DryRun:
			slog.Debug("Dry run, not sending", "channel", name, "to", r.Recipient, "bytes", d.BodyLength())
		default:
			slog.Info("Sending digest", "channel", name, "to", r.Recipient)
			if err := p.mailer.SendMail(ctx, p.opts.FromAddress, r.Recipient, Subject(name, window), body); err != nil {
				return digests, fmt.Errorf("sending digest for #%s: %w", name, err)
			}
			d.Sent = true
		}
		digests = append(digests, d)
	}
	return digests, nil
}

// Subject is the mail subject for a channel's digest.
func Subject(channel string, w Window) string {
	return fmt.Sprintf("Slack digest for #%s [%s]", channel, w.Day())
}
