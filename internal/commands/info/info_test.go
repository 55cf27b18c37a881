package info

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/internal/storage"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	core.Base
}

func (c *stubCommand) Run(context.Context, *cmd.Invocation) error { return nil }

type stubGroup struct {
	stubCommand
	subs *cmd.Registry
}

func (g *stubGroup) Subcommands() *cmd.Registry { return g.subs }

func testRegistry(t *testing.T) *cmd.Registry {
	t.Helper()
	subs := cmd.NewRegistry()
	subs.MustRegister(&stubCommand{Base: core.Base{
		CommandName: "set",
		Summary:     "Change it",
		Params:      args.NewBuilder().Param("prefix", nil).MustBuild(),
	}})

	reg := cmd.NewRegistry()
	reg.MustRegister(&stubCommand{Base: core.Base{
		CommandName:     "roll",
		CommandAliases:  []string{"r", "dice"},
		Summary:         "Roll dice",
		CommandCategory: "🎲 Gameplay",
		Params: args.NewBuilder().
			Param("formula", nil).
			Param("times", args.TypeOf[int](), args.Default(1)).
			MustBuild(),
	}})
	reg.MustRegister(&stubCommand{Base: core.Base{CommandName: "ping", Summary: "Pong", CommandCategory: "🕯️ Information"}})
	reg.MustRegister(&stubCommand{Base: core.Base{CommandName: "secret", Summary: "Hidden", Unlisted: true}})
	reg.MustRegister(&stubCommand{Base: core.Base{CommandName: "misc", Summary: "No category"}})
	reg.MustRegister(&stubCommand{Base: core.Base{CommandName: "legacy", Summary: "Switched off", Disabled: true}})
	reg.MustRegister(&stubGroup{
		stubCommand: stubCommand{Base: core.Base{CommandName: "prefix", Summary: "Show the prefix", CommandCategory: "⚙️ Settings"}},
		subs:        subs,
	})
	return reg
}

func TestBuildHelpByCategory(t *testing.T) {
	text := BuildHelpByCategory(testRegistry(t), "?")

	assert.NotContains(t, text, "secret")
	assert.NotContains(t, text, "legacy")
	assert.Contains(t, text, "`?roll` - Roll dice")
	assert.Contains(t, text, "**Other**")
	assert.True(t, strings.HasSuffix(text, "Type `?help <command>` for details."))

	info := strings.Index(text, "Information")
	game := strings.Index(text, "Gameplay")
	settings := strings.Index(text, "Settings")
	other := strings.Index(text, "Other")
	assert.True(t, info < game && game < settings && settings < other, text)
}

func TestDescribeCommand(t *testing.T) {
	reg := testRegistry(t)

	text, ok := DescribeCommand(reg, "!", []string{"dice"})
	require.True(t, ok)
	assert.Contains(t, text, "`!dice <formula> [times]`")
	assert.Contains(t, text, "**Aliases**: `r`, `dice`")

	text, ok = DescribeCommand(reg, "!", []string{"prefix"})
	require.True(t, ok)
	assert.Contains(t, text, "**Subcommands**")
	assert.Contains(t, text, "`!prefix set <prefix>` - Change it")

	text, ok = DescribeCommand(reg, "!", []string{"prefix", "set"})
	require.True(t, ok)
	assert.Contains(t, text, "`!prefix set <prefix>`")

	_, ok = DescribeCommand(reg, "!", []string{"nope"})
	assert.False(t, ok)
	_, ok = DescribeCommand(reg, "!", []string{"legacy"})
	assert.False(t, ok)
}

func TestFormatHistory(t *testing.T) {
	at := time.Unix(1700000000, 0)
	records := []storage.CommandHistoryRecord{
		{Username: "ann", Command: "roll", Param: "2d6", ChannelName: "general", Datetime: at},
		{Username: "bob", Command: "ping", Datetime: at},
		{Username: "cy", Command: "help", Param: "roll", Datetime: at},
	}

	text := FormatHistory(records, 2)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "<t:1700000000:R> **cy** `help roll`", lines[0])
	assert.Equal(t, "<t:1700000000:R> **bob** `ping`", lines[1])

	all := FormatHistory(records, 50)
	assert.Contains(t, all, "**ann** `roll 2d6` in #general")
}

func TestWhoisFields(t *testing.T) {
	user := &discordgo.User{ID: "175928847299117063", Username: "ann", GlobalName: "Ann"}

	fields := WhoisFields(user, nil)
	names := fieldNames(fields)
	assert.Equal(t, []string{"ID", "Bot", "Display name", "Created"}, names)
	assert.Equal(t, "<t:1462015105:f>", fields[3].Value)

	member := &discordgo.Member{
		User:     user,
		Nick:     "annie",
		JoinedAt: time.Unix(1600000000, 0),
		Roles:    []string{"1", "2"},
	}
	fields = WhoisFields(user, member)
	assert.Equal(t, []string{"ID", "Bot", "Display name", "Created", "Nickname", "Joined", "Roles (2)"}, fieldNames(fields))
	assert.Equal(t, "<@&1> <@&2>", fields[6].Value)
}

func fieldNames(fields []*discordgo.MessageEmbedField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
