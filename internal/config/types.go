package config

// Config is the root configuration structure for slack-digest.
// Serialised as YAML (configuration.yaml by default).
type Config struct {
	Slack    SlackConfig    `mapstructure:"slack"    yaml:"slack"    json:"slack"`
	Mail     MailConfig     `mapstructure:"mail"     yaml:"mail"     json:"mail"`
	Channels ChannelsConfig `mapstructure:"channels" yaml:"channels" json:"channels"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule" json:"schedule"`
	Notify   NotifyConfig   `mapstructure:"notify"   yaml:"notify"   json:"notify"`
}

// SlackConfig holds the API token and the rendering switches.
type SlackConfig struct {
	Token string `mapstructure:"token" yaml:"token" json:"token"`
	// Reactions appends one line per reaction under each message.
	Reactions bool `mapstructure:"reactions" yaml:"reactions" json:"reactions"`
	// JoinsLeaves keeps channel_join / channel_leave events in the digest.
	JoinsLeaves bool `mapstructure:"joins_leaves" yaml:"joins_leaves" json:"joins_leaves"`
	// Permalinks appends the message permalink under each message.
	Permalinks bool `mapstructure:"permalinks" yaml:"permalinks" json:"permalinks"`
}

// MailConfig controls SMTP delivery.
type MailConfig struct {
	FromAddress string `mapstructure:"fromaddress" yaml:"fromAddress" json:"fromAddress"`
	// SMTP is "host" or "host:port" (port defaults to 25).
	SMTP     string `mapstructure:"smtp"     yaml:"smtp"               json:"smtp"`
	UseTLS   bool   `mapstructure:"usetls"   yaml:"useTLS"             json:"useTLS"`
	Username string `mapstructure:"username" yaml:"username,omitempty" json:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty" json:"password,omitempty"`
}

// ChannelsConfig decides which channels are digested and where they go.
type ChannelsConfig struct {
	// Blacklist names channels that are never digested.
	Blacklist []string `mapstructure:"blacklist" yaml:"blacklist,omitempty" json:"blacklist,omitempty"`
	// Map sends a channel's digest to a specific address.
	Map map[string]string `mapstructure:"map" yaml:"map,omitempty" json:"map,omitempty"`
	// Catchall receives every channel not in Map or Blacklist. Empty = disabled.
	Catchall string `mapstructure:"catchall" yaml:"catchall,omitempty" json:"catchall,omitempty"`
}

// ScheduleConfig drives the long-running `schedule` command.
type ScheduleConfig struct {
	// Expr is a robfig/cron expression ("5 0 * * *", "@daily").
	Expr     string `mapstructure:"expr"     yaml:"expr"     json:"expr"`
	DaysBack int    `mapstructure:"daysback" yaml:"daysback" json:"daysback"`
}

// NotifyConfig controls operator notifications about digest runs.
type NotifyConfig struct {
	// Events limits which run events are sent. Empty = digest_failed only.
	Events  []string            `mapstructure:"events"  yaml:"events,omitempty" json:"events,omitempty"`
	Slack   SlackNotifyConfig   `mapstructure:"slack"   yaml:"slack"            json:"slack"`
	Webhook WebhookNotifyConfig `mapstructure:"webhook" yaml:"webhook"          json:"webhook"`
}

// SlackNotifyConfig posts run events to a Slack incoming webhook.
type SlackNotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url,omitempty" json:"webhook_url,omitempty"`
}

// WebhookNotifyConfig posts run events to a generic HTTP endpoint.
type WebhookNotifyConfig struct {
	URL string `mapstructure:"url" yaml:"url,omitempty" json:"url,omitempty"`
	// Secret signs the payload with HMAC-SHA256 when set.
	Secret string `mapstructure:"secret" yaml:"secret,omitempty" json:"secret,omitempty"`
}
