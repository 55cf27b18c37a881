package info

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/internal/storage"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

const maxHistoryCount = 20

type HistoryCommand struct {
	core.Base
}

func NewHistoryCommand() *HistoryCommand {
	return &HistoryCommand{Base: core.Base{
		CommandName:     "history",
		CommandAliases:  []string{"log"},
		Summary:         "Show the most recent commands used in this server",
		CommandCategory: "🕯️ Information",
		GuildOnly:       true,
		Params:          args.NewBuilder().Param("count", args.TypeOf[int](), args.Default(10)).MustBuild(),
	}}
}

func (c *HistoryCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok || mc.Storage == nil {
		return nil
	}

	count := inv.Args.Int("count")
	if count < 1 || count > maxHistoryCount {
		return mc.Reply(fmt.Sprintf("Count must be between 1 and %d.", maxHistoryCount))
	}

	records, err := mc.Storage.CommandHistory(mc.GuildID())
	if err != nil {
		return fmt.Errorf("failed to fetch command history: %w", err)
	}
	if len(records) == 0 {
		return mc.Reply("No commands recorded yet.")
	}
	return mc.ReplyEmbed("Command history", FormatHistory(records, count))
}

// FormatHistory lists the newest count records, newest first.
func FormatHistory(records []storage.CommandHistoryRecord, count int) string {
	if count > len(records) {
		count = len(records)
	}
	var sb strings.Builder
	for i := len(records) - 1; i >= len(records)-count; i-- {
		r := records[i]
		line := fmt.Sprintf("<t:%d:R> **%s** `%s", r.Datetime.Unix(), r.Username, r.Command)
		if r.Param != "" {
			line += " " + r.Param
		}
		sb.WriteString(line + "`")
		if r.ChannelName != "" {
			sb.WriteString(" in #" + r.ChannelName)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewHistoryCommand())
}
