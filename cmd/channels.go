package cmd

import (
	"context"
	"fmt"

	"github.com/CosmoTheDev/slack-digest/internal/config"
	"github.com/CosmoTheDev/slack-digest/internal/digest"
	"github.com/CosmoTheDev/slack-digest/internal/slackapi"
	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List Slack channels and where their digests are sent",
	Long: `Lists every public Slack channel with the routing decision for it:
the recipient address, or IGNORE when the channel is blacklisted or has
no mapping and no catch-all address is configured.`,
	RunE: runChannels,
}

func runChannels(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	channels, err := slackapi.New(cfg.Slack.Token).ListChannels(ctx)
	if err != nil {
		return err
	}

	routing := digest.RoutingFromConfig(cfg.Channels)
	routed := 0
	for _, ch := range channels {
		recipient, ok := routing.Recipient(ch.Name)
		if !ok {
			reason := "no mapping"
			if routing.Excluded[ch.Name] {
				reason = "blacklisted"
			}
			fmt.Println(dimStyle.Render(fmt.Sprintf("  IGNORE  #%-24s (%s)", ch.Name, reason)))
			continue
		}
		routed++
		fmt.Printf("  DIGEST  #%-24s -> %s\n", ch.Name, recipient)
	}

	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf("  %d of %d channels routed", routed, len(channels))))
	return nil
}
