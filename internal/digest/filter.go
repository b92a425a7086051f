package digest

const (
	subtypeBotMessage   = "bot_message"
	subtypeChannelJoin  = "channel_join"
	subtypeChannelLeave = "channel_leave"
)

// IsEligible reports whether msg belongs in a digest.
func IsEligible(msg Message, opts RenderOptions) bool {
	if msg.Type != "message" {
		return false
	}
	switch msg.Subtype {
	case subtypeBotMessage:
		return false
	case subtypeChannelJoin, subtypeChannelLeave:
		return opts.IncludeJoinsLeaves
	default:
		return true
	}
}
