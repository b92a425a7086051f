package digest

import (
	"testing"

	"github.com/CosmoTheDev/slack-digest/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestRoutePrecedence(t *testing.T) {
	cfg := RoutingFromConfig(config.ChannelsConfig{
		Blacklist: []string{"random"},
		Map:       map[string]string{"eng": "eng@x.com"},
		Catchall:  "all@x.com",
	})
	channels := []Channel{
		{ID: "C1", Name: "random"},
		{ID: "C2", Name: "eng"},
		{ID: "C3", Name: "ops"},
	}

	got := RouteChannels(channels, cfg)
	want := []Route{
		{Channel: Channel{ID: "C2", Name: "eng"}, Recipient: "eng@x.com"},
		{Channel: Channel{ID: "C3", Name: "ops"}, Recipient: "all@x.com"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteExclusionBeatsMap(t *testing.T) {
	cfg := RoutingConfig{
		Excluded:   map[string]bool{"eng": true},
		ChannelMap: map[string]string{"eng": "eng@x.com"},
		CatchAll:   "all@x.com",
	}
	if got := RouteChannels([]Channel{{ID: "C2", Name: "eng"}}, cfg); len(got) != 0 {
		t.Fatalf("excluded channel was routed: %+v", got)
	}
}

func TestRouteWithoutCatchAll(t *testing.T) {
	cfg := RoutingConfig{ChannelMap: map[string]string{"eng": "eng@x.com", "blank": ""}}
	got := RouteChannels([]Channel{{ID: "C1", Name: "ops"}, {ID: "C2", Name: "eng"}, {ID: "C3", Name: "blank"}}, cfg)
	if len(got) != 1 || got[0].Channel.Name != "eng" || got[0].Recipient != "eng@x.com" {
		t.Fatalf("unexpected routes: %+v", got)
	}
}

func TestRouteMappedChannelNeverUsesCatchAll(t *testing.T) {
	cfg := RoutingConfig{ChannelMap: map[string]string{"blank": ""}, CatchAll: "all@x.com"}
	if got := RouteChannels([]Channel{{ID: "C3", Name: "blank"}}, cfg); len(got) != 0 {
		t.Fatalf("mapped channel fell through to catch-all: %+v", got)
	}
}
