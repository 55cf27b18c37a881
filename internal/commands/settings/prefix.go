package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

const maxPrefixLength = 5

var manageGuild = []int64{discordgo.PermissionManageGuild}

type PrefixCommand struct {
	core.Base
	subs *cmd.Registry
}

func NewPrefixCommand() *PrefixCommand {
	subs := cmd.NewRegistry()
	subs.MustRegister(&prefixSetCommand{Base: core.Base{
		CommandName:     "set",
		Summary:         "Change the command prefix for this server",
		CommandCategory: "⚙️ Settings",
		Permissions:     manageGuild,
		Params:          args.NewBuilder().Param("prefix", nil).RejectExtra().MustBuild(),
	}})
	subs.MustRegister(&prefixResetCommand{Base: core.Base{
		CommandName:     "reset",
		Summary:         "Restore the default command prefix",
		CommandCategory: "⚙️ Settings",
		Permissions:     manageGuild,
	}})

	return &PrefixCommand{
		Base: core.Base{
			CommandName:     "prefix",
			Summary:         "Show or change the command prefix",
			CommandCategory: "⚙️ Settings",
			GuildOnly:       true,
		},
		subs: subs,
	}
}

func (c *PrefixCommand) Subcommands() *cmd.Registry { return c.subs }

func (c *PrefixCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok {
		return nil
	}
	return mc.Reply(fmt.Sprintf("The prefix here is `%s`. Use `%sprefix set <prefix>` to change it.", mc.Prefix, mc.Prefix))
}

// ValidatePrefix checks a prefix a server wants to use.
func ValidatePrefix(p string) error {
	if p == "" {
		return errors.New("the prefix cannot be empty")
	}
	if utf8.RuneCountInString(p) > maxPrefixLength {
		return fmt.Errorf("the prefix can be at most %d characters long", maxPrefixLength)
	}
	if strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return errors.New("the prefix cannot contain spaces")
	}
	if strings.ContainsAny(p, "`@") {
		return errors.New("the prefix cannot contain ` or @")
	}
	return nil
}

type prefixSetCommand struct {
	core.Base
}

func (c *prefixSetCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok || mc.Storage == nil || mc.GuildID() == "" {
		return nil
	}
	p := inv.Args.String("prefix")
	if err := ValidatePrefix(p); err != nil {
		return mc.Reply(fmt.Sprintf("Invalid prefix: %s.", err))
	}
	if err := mc.Storage.SetPrefix(mc.GuildID(), p); err != nil {
		return fmt.Errorf("failed to save prefix: %w", err)
	}
	return mc.Reply(fmt.Sprintf("Prefix set to `%s`.", p))
}

type prefixResetCommand struct {
	core.Base
}

func (c *prefixResetCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := core.FromInvocation(inv)
	if !ok || mc.Storage == nil || mc.GuildID() == "" {
		return nil
	}
	if err := mc.Storage.SetPrefix(mc.GuildID(), ""); err != nil {
		return fmt.Errorf("failed to reset prefix: %w", err)
	}
	return mc.Reply("Prefix reset to the default.")
}

func init() {
	cmd.DefaultRegistry.MustRegister(NewPrefixCommand())
}
