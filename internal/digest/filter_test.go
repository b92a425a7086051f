package digest

import "testing"

func TestIsEligible(t *testing.T) {
	withJoins := RenderOptions{IncludeJoinsLeaves: true}
	cases := []struct {
		name string
		msg  Message
		opts RenderOptions
		want bool
	}{
		{"plain message", Message{Type: "message"}, RenderOptions{}, true},
		{"other subtype", Message{Type: "message", Subtype: "file_comment"}, RenderOptions{}, true},
		{"non-message event", Message{Type: "channel_marked"}, withJoins, false},
		{"bot message", Message{Type: "message", Subtype: "bot_message"}, RenderOptions{}, false},
		{"bot message with every flag", Message{Type: "message", Subtype: "bot_message"},
			RenderOptions{IncludeReactions: true, IncludeJoinsLeaves: true, IncludePermalinks: true}, false},
		{"join without flag", Message{Type: "message", Subtype: "channel_join"}, RenderOptions{}, false},
		{"join with flag", Message{Type: "message", Subtype: "channel_join"}, withJoins, true},
		{"leave without flag", Message{Type: "message", Subtype: "channel_leave"}, RenderOptions{}, false},
		{"leave with flag", Message{Type: "message", Subtype: "channel_leave"}, withJoins, true},
	}
	for _, tc := range cases {
		if got := IsEligible(tc.msg, tc.opts); got != tc.want {
			t.Errorf("%s: IsEligible = %v, want %v", tc.name, got, tc.want)
		}
	}
}
