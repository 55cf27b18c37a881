package discord

import (
	"reflect"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/pkg/args"
)

// Entity parameter types understood once RegisterConverters has run.
var (
	UserType         = reflect.TypeFor[*discordgo.User]()
	MemberType       = reflect.TypeFor[*discordgo.Member]()
	ChannelType      = reflect.TypeFor[*discordgo.Channel]()
	TextChannelType  = reflect.TypeFor[TextChannel]()
	VoiceChannelType = reflect.TypeFor[VoiceChannel]()
	RoleType         = reflect.TypeFor[*discordgo.Role]()
	GuildType        = reflect.TypeFor[*discordgo.Guild]()
	EmojiType        = reflect.TypeFor[*discordgo.Emoji]()
	SnowflakeType    = reflect.TypeFor[Snowflake]()
)

// RegisterConverters makes the Discord entity types resolvable through
// resolver. Snowflake needs no registration.
func RegisterConverters(reg *args.Registry, resolver args.EntityResolver) {
	reg.RegisterEntity(UserType, args.EntityUser, resolver)
	reg.RegisterEntity(MemberType, args.EntityMember, resolver)
	reg.RegisterEntity(ChannelType, args.EntityChannel, resolver)
	reg.RegisterEntity(TextChannelType, args.EntityTextChannel, resolver)
	reg.RegisterEntity(VoiceChannelType, args.EntityVoiceChannel, resolver)
	reg.RegisterEntity(RoleType, args.EntityRole, resolver)
	reg.RegisterEntity(GuildType, args.EntityGuild, resolver)
	reg.RegisterEntity(EmojiType, args.EntityEmoji, resolver)
}
