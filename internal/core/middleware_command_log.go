package core

import (
	"context"
	"strings"
	"time"

	"github.com/keshon/textcmd/internal/storage"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/rs/zerolog"
)

// WithCommandLogger logs each execution and appends it to the guild's
// command history.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			name := c.Name()
			if len(inv.Path) > 0 {
				name = strings.Join(inv.Path, " ")
			}

			log := zerolog.Ctx(ctx)
			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}

			mc, ok := FromInvocation(inv)
			if !ok {
				ev.Str("command", name).Dur("took", time.Since(start)).Msg("command executed")
				return err
			}

			user := mc.Event.Author
			ev.Str("command", name).
				Str("guild_id", mc.GuildID()).
				Str("channel_id", mc.Event.ChannelID).
				Str("user", user.Username).
				Dur("took", time.Since(start)).
				Msg("command executed")

			if mc.Storage != nil && mc.GuildID() != "" {
				if e := LogCommand(mc, name, inv.Raw); e != nil {
					log.Warn().Err(e).Str("command", name).Msg("failed to record command")
				}
			}
			return err
		})
	}
}

// LogCommand appends the invocation to the guild's command history.
func LogCommand(mc *MessageContext, command, param string) error {
	user := mc.Event.Author
	return mc.Storage.AppendCommand(mc.GuildID(), storage.CommandHistoryRecord{
		ChannelID:   mc.Event.ChannelID,
		ChannelName: ChannelName(mc.Session, mc.Event.ChannelID),
		GuildName:   GuildName(mc.Session, mc.GuildID()),
		UserID:      user.ID,
		Username:    user.Username,
		Command:     command,
		Param:       param,
		Datetime:    time.Now().UTC(),
	})
}
