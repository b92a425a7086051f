package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Error reports a configuration problem detected before any network I/O.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bad configuration: %s %s", e.Field, e.Reason)
}

// ValidateDaysBack rejects a non-positive look-back.
func ValidateDaysBack(n int) error {
	if n < 1 {
		return &Error{Field: "daysback", Reason: "must be at least 1"}
	}
	return nil
}

// validate checks the raw config tree. Shape errors have to be caught
// here because Unmarshal would silently coerce or drop them.
func validate(v *viper.Viper) error {
	for _, section := range []string{"slack", "mail", "channels"} {
		if !v.InConfig(section) {
			return &Error{Field: section, Reason: `section is missing (need "channels", "slack" and "mail")`}
		}
	}

	switch raw := v.Get("channels.blacklist").(type) {
	case nil:
	case []any:
		// YAML reads an unquoted all-digit name such as 2024 as a number.
		for _, item := range raw {
			switch item.(type) {
			case string, int, int64, uint64:
			default:
				return &Error{Field: "channels.blacklist", Reason: "must be a list of channel names"}
			}
		}
	default:
		return &Error{Field: "channels.blacklist", Reason: "must be a list"}
	}

	switch raw := v.Get("channels.map").(type) {
	case nil:
	case map[string]any:
		for name, addr := range raw {
			if _, ok := addr.(string); !ok {
				return &Error{Field: "channels.map." + name, Reason: "must be a single email address"}
			}
		}
	default:
		return &Error{Field: "channels.map", Reason: "must map channel names to addresses"}
	}

	switch v.Get("channels.catchall").(type) {
	case nil, string:
	default:
		return &Error{Field: "channels.catchall", Reason: "must have one email address"}
	}

	required := map[string]string{
		"slack.token":      v.GetString("slack.token"),
		"mail.fromAddress": v.GetString("mail.fromaddress"),
		"mail.smtp":        v.GetString("mail.smtp"),
	}
	for _, key := range []string{"slack.token", "mail.fromAddress", "mail.smtp"} {
		if required[key] == "" {
			return &Error{Field: key, Reason: "is required"}
		}
	}
	return nil
}
