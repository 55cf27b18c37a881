package info

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/internal/discord"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

type WhoisCommand struct {
	core.Base
}

func NewWhoisCommand() *WhoisCommand {
	return &WhoisCommand{Base: core.Base{
		CommandName:     "whois",
		CommandAliases:  []string{"userinfo"},
		Summary:         "Show details about a member or user",
		CommandCategory: "🕯️ Information",
		Params: args.NewBuilder().
			Param("target", nil, args.OneOf(discord.MemberType, discord.UserType), args.Optional()).
			MustBuild(),
	}}
}

func (c *WhoisCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}

	var member *discordgo.Member
	user := mc.Event.Author
	switch v := inv.Args["target"].(type) {
	case *discordgo.Member:
		member, user = v, v.User
	case *discordgo.User:
		user = v
	default:
		if mc.GuildID() != "" {
			member, _ = mc.Session.State.Member(mc.GuildID(), user.ID)
		}
	}

	return mc.ReplyEmbed(user.Username, "", WhoisFields(user, member)...)
}

// WhoisFields builds the embed fields for user, adding guild details when
// member is not nil.
func WhoisFields(user *discordgo.User, member *discordgo.Member) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: user.ID, Inline: true},
		{Name: "Bot", Value: yesNo(user.Bot), Inline: true},
	}
	if user.GlobalName != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Display name", Value: user.GlobalName, Inline: true})
	}
	if created, err := discord.Snowflake(user.ID).Time(); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Created", Value: discordTimestamp(created)})
	}
	if member == nil {
		return fields
	}
	if member.Nick != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Nickname", Value: member.Nick, Inline: true})
	}
	if !member.JoinedAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Joined", Value: discordTimestamp(member.JoinedAt)})
	}
	if len(member.Roles) > 0 {
		mentions := make([]string, len(member.Roles))
		for i, id := range member.Roles {
			mentions[i] = "<@&" + id + ">"
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: fmt.Sprintf("Roles (%d)", len(member.Roles)), Value: strings.Join(mentions, " ")})
	}
	return fields
}

func discordTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewWhoisCommand())
}
