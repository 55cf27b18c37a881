package info

import (
	"context"
	"fmt"

	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/pkg/cmd"
)

type PingCommand struct {
	core.Base
}

func (c *PingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}
	latency := mc.Session.HeartbeatLatency().Milliseconds()
	return mc.ReplyEmbed("Pong!", fmt.Sprintf("Latency: %dms", latency))
}

func init() {
	cmd.DefaultRegistry.MustRegister(&PingCommand{Base: core.Base{
		CommandName:     "ping",
		Summary:         "Check bot latency",
		CommandCategory: "🕯️ Information",
	}})
}
