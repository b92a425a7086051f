// Package slackapi adapts github.com/slack-go/slack to digest.ChatClient.
package slackapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/digest"
	"github.com/slack-go/slack"
)

const channelsPageSize = 200

// Client is a thin wrapper over the Slack Web API.
type Client struct {
	api *slack.Client
}

// Option customises the underlying slack client.
type Option func(*[]slack.Option)

// WithAPIURL points the client at a different API root (tests, proxies).
// The URL must end with a slash.
func WithAPIURL(u string) Option {
	return func(opts *[]slack.Option) { *opts = append(*opts, slack.OptionAPIURL(u)) }
}

// New returns a Client authenticated with token and a 30-second HTTP timeout.
func New(token string, opts ...Option) *Client {
	slackOpts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	for _, o := range opts {
		o(&slackOpts)
	}
	return &Client{api: slack.New(token, slackOpts...)}
}

// ListUsers returns every workspace member.
func (c *Client) ListUsers(ctx context.Context) ([]digest.User, error) {
	members, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("slackapi: list users: %w", err)
	}
	users := make([]digest.User, 0, len(members))
	for _, m := range members {
		users = append(users, digest.User{ID: m.ID, Name: m.Name, RealName: m.RealName})
	}
	return users, nil
}

// ListChannels returns every unarchived public channel, following cursors.
func (c *Client) ListChannels(ctx context.Context) ([]digest.Channel, error) {
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           channelsPageSize,
		Types:           []string{"public_channel"},
	}

	var out []digest.Channel
	for {
		channels, next, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("slackapi: list channels: %w", err)
		}
		for _, ch := range channels {
			out = append(out, digest.Channel{ID: ch.ID, Name: ch.Name})
		}
		if next == "" {
			return out, nil
		}
		params.Cursor = next

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("slackapi: list channels: %w", err)
		}
	}
}

// FetchHistory returns up to limit messages of channelID inside w,
// newest first.
func (c *Client) FetchHistory(ctx context.Context, channelID string, w digest.Window, limit int) ([]digest.Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    strconv.FormatInt(w.Oldest, 10),
		Latest:    strconv.FormatInt(w.Latest, 10),
		Inclusive: true,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("slackapi: history %s: %w", channelID, err)
	}

	msgs := make([]digest.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		msgs = append(msgs, convertMessage(m))
	}
	return msgs, nil
}

// Permalink resolves the permalink of message ts.
func (c *Client) Permalink(ctx context.Context, channelID, ts string) (string, error) {
	link, err := c.api.GetPermalinkContext(ctx, &slack.PermalinkParameters{Channel: channelID, Ts: ts})
	if err != nil {
		return "", fmt.Errorf("slackapi: permalink %s/%s: %w", channelID, ts, err)
	}
	return link, nil
}

// Identity describes the token owner, as reported by auth.test.
type Identity struct {
	Team string
	User string
	URL  string
}

// AuthTest verifies the token.
func (c *Client) AuthTest(ctx context.Context) (*Identity, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("slackapi: auth test: %w", err)
	}
	return &Identity{Team: resp.Team, User: resp.User, URL: resp.URL}, nil
}

func convertMessage(m slack.Message) digest.Message {
	msg := digest.Message{
		Type:      m.Type,
		Subtype:   m.SubType,
		Timestamp: m.Timestamp,
		Text:      m.Text,
		User:      m.User,
	}
	if m.Comment != nil {
		msg.CommentUser = m.Comment.User
	}
	for _, r := range m.Reactions {
		msg.Reactions = append(msg.Reactions, digest.Reaction{Name: r.Name, Users: r.Users})
	}
	return msg
}
