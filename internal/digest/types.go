// Package digest turns a day of Slack channel history into per-channel
// plain-text digests and hands them to a mail sender.
package digest

import "github.com/CosmoTheDev/slack-digest/internal/config"

// Channel is a Slack conversation as returned by the chat API.
type Channel struct {
	ID   string
	Name string
}

// User is a workspace member. RealName may be empty.
type User struct {
	ID       string
	Name     string
	RealName string
}

// Message is a single history record.
type Message struct {
	Type      string
	Subtype   string
	Timestamp string // "1700000000.000200"
	Text      string
	User      string
	// CommentUser is the author of a file comment, used when User is empty.
	CommentUser string
	Reactions   []Reaction
}

// Reaction is one emoji reaction and the users who left it, in API order.
type Reaction struct {
	Name  string
	Users []string
}

// RoutingConfig decides which channels are digested and for whom.
type RoutingConfig struct {
	Excluded   map[string]bool
	ChannelMap map[string]string
	// CatchAll is empty when no catch-all address is configured.
	CatchAll string
}

// RoutingFromConfig converts the channels section of the config file.
func RoutingFromConfig(cfg config.ChannelsConfig) RoutingConfig {
	rc := RoutingConfig{
		Excluded:   make(map[string]bool, len(cfg.Blacklist)),
		ChannelMap: make(map[string]string, len(cfg.Map)),
		CatchAll:   cfg.Catchall,
	}
	for _, name := range cfg.Blacklist {
		rc.Excluded[name] = true
	}
	for name, addr := range cfg.Map {
		rc.ChannelMap[name] = addr
	}
	return rc
}

// RenderOptions are the per-run rendering switches.
type RenderOptions struct {
	IncludeReactions   bool
	IncludeJoinsLeaves bool
	IncludePermalinks  bool
}

// RenderOptionsFromConfig reads the switches from the slack section.
func RenderOptionsFromConfig(cfg config.SlackConfig) RenderOptions {
	return RenderOptions{
		IncludeReactions:   cfg.Reactions,
		IncludeJoinsLeaves: cfg.JoinsLeaves,
		IncludePermalinks:  cfg.Permalinks,
	}
}

// Route is a channel selected for digesting together with its recipient.
type Route struct {
	Channel   Channel
	Recipient string
}

// ChannelDigest is the rendered result for one routed channel.
type ChannelDigest struct {
	Channel   string
	Recipient string
	Body      string
	Sent      bool
}

// BodyLength is reported instead of the body in dry-run output.
func (d ChannelDigest) BodyLength() int { return len(d.Body) }
