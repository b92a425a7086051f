package digest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	timestampLayout = "2006-01-02 15:04:05 UTC"
	separator       = "----"
)

var mentionPattern = regexp.MustCompile(`<@(\w+)>`)

// Directory maps user ids to display names. It is built once per run.
type Directory map[string]string

// NewDirectory prefers a user's real name and falls back to the handle.
func NewDirectory(users []User) Directory {
	dir := make(Directory, len(users))
	for _, u := range users {
		name := u.RealName
		if name == "" {
			name = u.Name
		}
		dir[u.ID] = name
	}
	return dir
}

// Lookup returns the display name for id, or "" when unknown.
func (d Directory) Lookup(id string) string {
	return d[id]
}

// nameOrID is used wherever an empty name would make the line unreadable.
func (d Directory) nameOrID(id string) string {
	if name, ok := d[id]; ok && name != "" {
		return name
	}
	return id
}

// SubstituteMentions rewrites every <@ID> token as @Name. Ids missing from
// the directory are kept as-is, so "<@U999>" becomes "@U999".
func SubstituteMentions(text string, dir Directory) string {
	return mentionPattern.ReplaceAllStringFunc(text, func(token string) string {
		id := token[2 : len(token)-1]
		return "@" + dir.nameOrID(id)
	})
}

// PermalinkFunc resolves the permalink of the message ts in channelID.
type PermalinkFunc func(channelID, ts string) (string, error)

// Render builds the digest body for one channel. msgs arrive newest-first
// as the history API returns them; the body lists them oldest-first.
// permalink may be nil when opts.IncludePermalinks is false.
func Render(channelID string, msgs []Message, users Directory, opts RenderOptions, permalink PermalinkFunc) (string, error) {
	var b strings.Builder
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if !IsEligible(m, opts) {
			continue
		}

		ts, err := formatTimestamp(m.Timestamp)
		if err != nil {
			return "", err
		}
		sender := m.User
		if sender == "" {
			sender = m.CommentUser
		}
		fmt.Fprintf(&b, "%s - %s: %s\n", ts, users.Lookup(sender), SubstituteMentions(m.Text, users))

		if opts.IncludeReactions {
			for _, r := range m.Reactions {
				names := make([]string, len(r.Users))
				for j, id := range r.Users {
					names[j] = users.nameOrID(id)
				}
				fmt.Fprintf(&b, "%s : %s\n", r.Name, strings.Join(names, ", "))
			}
		}
		if opts.IncludePermalinks && permalink != nil {
			link, err := permalink(channelID, m.Timestamp)
			if err != nil {
				return "", err
			}
			b.WriteString(link + "\n")
		}
		b.WriteString(separator + "\n")
	}
	return b.String(), nil
}

// formatTimestamp drops the fractional part of a Slack ts.
func formatTimestamp(ts string) (string, error) {
	whole, _, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "", fmt.Errorf("digest: bad message timestamp %q: %w", ts, err)
	}
	return formatUnix(sec), nil
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(timestampLayout)
}
