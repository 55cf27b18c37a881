package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/internal/discord"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

// ThankCommand takes any number of members up front, then a reason:
// "thank @ann @bob for the map".
type ThankCommand struct {
	core.Base
}

func NewThankCommand() *ThankCommand {
	return &ThankCommand{Base: core.Base{
		CommandName:     "thank",
		CommandAliases:  []string{"thanks"},
		Summary:         "Thank one or more members",
		CommandCategory: "🎲 Gameplay",
		GuildOnly:       true,
		Params: args.NewBuilder().
			Param("members", discord.MemberType, args.Many()).
			Param("reason", nil, args.Rest()).
			MustBuild(),
	}}
}

func (c *ThankCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}
	values, _ := args.Get[[]any](inv.Args, "members")
	return mc.Reply(ThankMessage(mc.Event.Author, values, inv.Args.String("reason")))
}

// ThankMessage renders the reply for the bound members.
func ThankMessage(author *discordgo.User, members []any, reason string) string {
	names := make([]string, 0, len(members))
	for _, v := range members {
		if m, ok := v.(*discordgo.Member); ok && m.User != nil {
			names = append(names, displayName(m))
		}
	}
	return fmt.Sprintf("**%s** thanks **%s** %s", author.Username, strings.Join(names, "**, **"), reason)
}

func displayName(m *discordgo.Member) string {
	switch {
	case m.Nick != "":
		return m.Nick
	case m.User.GlobalName != "":
		return m.User.GlobalName
	default:
		return m.User.Username
	}
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewThankCommand())
}
