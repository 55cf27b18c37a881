package utility

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/internal/discord"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/util"
)

const maxSayWorkers = 3

type SayCommand struct {
	core.Base
}

func NewSayCommand() *SayCommand {
	return &SayCommand{Base: core.Base{
		CommandName:     "say",
		CommandAliases:  []string{"echo"},
		Summary:         "Repeat a message here or in the given channels",
		CommandCategory: "📢 Utilities",
		GuildOnly:       true,
		Permissions:     []int64{discordgo.PermissionManageMessages},
		Params: args.NewBuilder().
			Param("channels", discord.TextChannelType, args.Many(), args.Default(nil)).
			Param("text", nil, args.Rest()).
			MustBuild(),
	}}
}

func (c *SayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}

	text := inv.Args.String("text")
	targets := SayTargets(inv.Args["channels"], mc.Event.ChannelID)
	err := util.Parallel(ctx, targets, maxSayWorkers, func(_ context.Context, id string) error {
		if err := core.MessageRespond(mc.Session, id, text); err != nil {
			return fmt.Errorf("failed to send to channel %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(targets) > 1 || targets[0] != mc.Event.ChannelID {
		return mc.Session.MessageReactionAdd(mc.Event.ChannelID, mc.Event.ID, "✅")
	}
	return nil
}

// SayTargets returns the distinct channel IDs from a bound channel list, or
// fallback when none were given.
func SayTargets(bound any, fallback string) []string {
	list, _ := bound.([]any)
	seen := make(map[string]bool, len(list))
	var ids []string
	for _, v := range list {
		ch, ok := v.(discord.TextChannel)
		if !ok || ch.Channel == nil || seen[ch.ID] {
			continue
		}
		seen[ch.ID] = true
		ids = append(ids, ch.ID)
	}
	if len(ids) == 0 {
		return []string{fallback}
	}
	return ids
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewSayCommand())
}
