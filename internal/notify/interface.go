package notify

import "context"

// Event types raised by a digest run.
const (
	EventDigestFailed    = "digest_failed"
	EventDigestCompleted = "digest_completed"
)

// Event represents an operator notification about a digest run.
type Event struct {
	Type     string // EventDigestFailed | EventDigestCompleted
	Title    string
	Body     string
	Metadata map[string]any // extra structured data
}

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, evt Event) error
}
