package core

import (
	"github.com/keshon/textcmd/internal/storage"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Base carries the metadata every message command shares. Embed it and add a
// Run method.
type Base struct {
	CommandName     string
	CommandAliases  []string
	Summary         string
	CommandCategory string
	Params          *args.Signature
	Permissions     []int64 // any-of; empty means everyone
	Unlisted        bool
	Disabled        bool
	GuildOnly       bool
	// PrivateChecks keeps a group's checks from also guarding its subcommands.
	PrivateChecks   bool
}

func (b *Base) Name() string { return b.CommandName }
func (b *Base) Aliases() []string { return b.CommandAliases }
func (b *Base) Description() string { return b.Summary }
func (b *Base) Category() string { return b.CommandCategory }
func (b *Base) Signature() *args.Signature { return b.Params }
func (b *Base) UserPermissions() []int64 { return b.Permissions }
func (b *Base) Hidden() bool { return b.Unlisted }
func (b *Base) Enabled() bool { return !b.Disabled }
func (b *Base) RequiresGuild() bool { return b.GuildOnly }
func (b *Base) HierarchicalChecks() bool { return !b.PrivateChecks }

type Categorized interface {
	Category() string
}

// PermissionRequirer is implemented by commands limited to members holding
// at least one of the returned permission bits.
type PermissionRequirer interface {
	UserPermissions() []int64
}

// GuildRequirer is implemented by commands that only run in guild channels.
type GuildRequirer interface {
	RequiresGuild() bool
}

// CategoryOf returns the category of c or of the command it wraps.
func CategoryOf(c cmd.Command) string {
	if cc, ok := cmd.Root(c).(Categorized); ok {
		return cc.Category()
	}
	return ""
}

// MessageContext is what a message command receives in Invocation.Data.
type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Storage *storage.Storage
	Prefix  string // prefix the message was addressed with
}

// FromInvocation extracts the MessageContext set by the dispatcher.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, bool) {
	if inv == nil {
		return nil, false
	}
	mc, ok := inv.Data.(*MessageContext)
	return mc, ok && mc != nil && mc.Event != nil && mc.Event.Message != nil
}
