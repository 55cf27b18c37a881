package core

import (
	"context"
	"fmt"

	"github.com/keshon/textcmd/pkg/cmd"
)

// CheckGuildOnly quietly drops invocations of guild-only commands that do not
// come from a guild channel.
func CheckGuildOnly() cmd.Check {
	return func(ctx context.Context, c cmd.Command, inv *cmd.Invocation) error {
		gr, ok := cmd.Root(c).(GuildRequirer)
		if !ok || !gr.RequiresGuild() {
			return nil
		}
		if mc, ok := FromInvocation(inv); ok && mc.GuildID() == "" {
			return fmt.Errorf("%w: %s is guild only", cmd.ErrSkip, c.Name())
		}
		return nil
	}
}
