package digest

import "log/slog"

// RouteChannels selects the channels to digest, in the order given. Exclusion wins
// over an explicit mapping, which wins over the catch-all address.
func RouteChannels(channels []Channel, cfg RoutingConfig) []Route {
	var routes []Route
	for _, ch := range channels {
		recipient, ok := cfg.Recipient(ch.Name)
		if !ok {
			slog.Debug("Ignore channel", "channel", ch.Name)
			continue
		}
		slog.Info("Digest channel", "channel", ch.Name, "to", recipient)
		routes = append(routes, Route{Channel: ch, Recipient: recipient})
	}
	return routes
}

// Recipient returns the address for channel name, or false when the
// channel is not digested.
func (cfg RoutingConfig) Recipient(name string) (string, bool) {
	if cfg.Excluded[name] {
		return "", false
	}
	// A mapped channel never falls through to the catch-all, even when its
	// address is blank.
	if addr, ok := cfg.ChannelMap[name]; ok {
		return addr, addr != ""
	}
	if cfg.CatchAll != "" {
		return cfg.CatchAll, true
	}
	return "", false
}
