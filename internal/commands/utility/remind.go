package utility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/jobmgr"
	"github.com/rs/zerolog"
)

const remindCategory = "⏰ Reminders"

var DurationType = args.TypeOf[Duration]()

// RemindCommand groups the reminder subcommands.
type RemindCommand struct {
	core.Base
	subs *cmd.Registry
}

func NewRemindCommand(store *Reminders) *RemindCommand {
	subs := cmd.NewRegistry()
	subs.MustRegister(&remindInCommand{
		Base: core.Base{
			CommandName:     "in",
			Summary:         "Remind you after a delay such as 10m or 1h30m",
			CommandCategory: remindCategory,
			Params: args.NewBuilder().
				Param("delay", DurationType).
				Param("text", nil, args.Rest()).
				MustBuild(),
		},
		store: store,
	})
	subs.MustRegister(&remindListCommand{
		Base:  core.Base{CommandName: "list", CommandAliases: []string{"ls"}, Summary: "Show your pending reminders", CommandCategory: remindCategory},
		store: store,
	})
	subs.MustRegister(&remindCancelCommand{
		Base: core.Base{
			CommandName:     "cancel",
			Summary:         "Cancel a pending reminder by its number",
			CommandCategory: remindCategory,
			Params:          args.NewBuilder().Param("id", args.TypeOf[int]()).MustBuild(),
		},
		store: store,
	})

	return &RemindCommand{
		Base: core.Base{
			CommandName:     "remind",
			CommandAliases:  []string{"reminder"},
			Summary:         "Set and manage reminders",
			CommandCategory: remindCategory,
		},
		subs: subs,
	}
}

func (c *RemindCommand) Subcommands() *cmd.Registry { return c.subs }

func (c *RemindCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}
	var sb strings.Builder
	for _, sub := range c.subs.GetAll() {
		path := append(append([]string{}, inv.Path...), sub.Name())
		sb.WriteString(fmt.Sprintf("`%s` - %s\n", core.Usage(mc.Prefix, path, cmd.SignatureOf(sub)), sub.Description()))
	}
	return mc.ReplyEmbed("Reminders", sb.String())
}

type remindInCommand struct {
	core.Base
	store *Reminders
}

func (c *remindInCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}

	delay := time.Duration(args.GetOr(inv.Args, "delay", Duration(0)))
	rem := Reminder{
		UserID:    mc.Event.Author.ID,
		ChannelID: mc.Event.ChannelID,
		Text:      inv.Args.String("text"),
	}
	session := mc.Session
	log := zerolog.Ctx(ctx)
	rem, ok = c.store.Schedule(rem, delay, func(r Reminder) {
		_, err := session.ChannelMessageSendComplex(r.ChannelID, &discordgo.MessageSend{
			Content:         fmt.Sprintf("<@%s> reminder: %s", r.UserID, r.Text),
			AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{r.UserID}},
		})
		if err != nil {
			log.Warn().Err(err).Int("reminder", r.ID).Msg("failed to deliver reminder")
		}
	})
	if !ok {
		return mc.Reply(fmt.Sprintf("You already have %d pending reminders.", maxRemindersPerUser))
	}
	return mc.Reply(fmt.Sprintf("Reminder #%d set for <t:%d:R>.", rem.ID, rem.Due.Unix()))
}

type remindListCommand struct {
	core.Base
	store *Reminders
}

func (c *remindListCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}
	list := c.store.List(mc.Event.Author.ID)
	if len(list) == 0 {
		return mc.Reply("You have no pending reminders.")
	}
	var sb strings.Builder
	for _, r := range list {
		sb.WriteString(fmt.Sprintf("**#%d** <t:%d:R> %s\n", r.ID, r.Due.Unix(), r.Text))
	}
	return mc.ReplyEmbed("Your reminders", sb.String())
}

type remindCancelCommand struct {
	core.Base
	store *Reminders
}

func (c *remindCancelCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}
	id := inv.Args.Int("id")
	if !c.store.Cancel(mc.Event.Author.ID, id) {
		return mc.Reply(fmt.Sprintf("No pending reminder #%d.", id))
	}
	return mc.Reply(fmt.Sprintf("Reminder #%d cancelled.", id))
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewRemindCommand(NewReminders(jobmgr.DefaultManager)))
}
