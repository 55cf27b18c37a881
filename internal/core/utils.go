package core

import (
	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0xb01e66

// noMentions stops echoed user text from pinging anyone.
var noMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}

func MessageRespond(s *discordgo.Session, channelID string, content string) error {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: noMentions,
	})
	return err
}

// Reply answers the triggering message in its channel.
func (m *MessageContext) Reply(content string) error {
	_, err := m.Session.ChannelMessageSendComplex(m.Event.ChannelID, &discordgo.MessageSend{
		Content:         content,
		Reference:       m.Event.Reference(),
		AllowedMentions: noMentions,
	})
	return err
}

// ReplyEmbed answers the triggering message with a single embed.
func (m *MessageContext) ReplyEmbed(title, description string, fields ...*discordgo.MessageEmbedField) error {
	_, err := m.Session.ChannelMessageSendComplex(m.Event.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       title,
			Description: description,
			Color:       EmbedColor,
			Fields:      fields,
		}},
		Reference:       m.Event.Reference(),
		AllowedMentions: noMentions,
	})
	return err
}

// GuildID returns the guild the message was sent in, "" for DMs.
func (m *MessageContext) GuildID() string {
	return m.Event.GuildID
}

// ChannelName returns the cached name of channelID, or "".
func ChannelName(s *discordgo.Session, channelID string) string {
	if s == nil || s.State == nil {
		return ""
	}
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch.Name
	}
	return ""
}

// GuildName returns the cached name of guildID, or "".
func GuildName(s *discordgo.Session, guildID string) string {
	if s == nil || s.State == nil || guildID == "" {
		return ""
	}
	if g, err := s.State.Guild(guildID); err == nil {
		return g.Name
	}
	return ""
}
