package discord

import (
	"regexp"
	"strings"
)

var (
	idRe             = regexp.MustCompile(`^([0-9]{15,20})$`)
	userMentionRe    = regexp.MustCompile(`^<@!?([0-9]{15,20})>$`)
	roleMentionRe    = regexp.MustCompile(`^<@&([0-9]{15,20})>$`)
	channelMentionRe = regexp.MustCompile(`^<#([0-9]{15,20})>$`)
	emojiRe          = regexp.MustCompile(`^<(a?):([A-Za-z0-9_]{1,32}):([0-9]{15,20})>$`)
)

// IsID reports whether raw is a bare snowflake.
func IsID(raw string) bool {
	return idRe.MatchString(raw)
}

func matchID(re *regexp.Regexp, raw string) (string, bool) {
	if m := idRe.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := re.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

// UserID extracts the ID from a bare ID, <@id> or <@!id>.
func UserID(raw string) (string, bool) { return matchID(userMentionRe, raw) }

// RoleID extracts the ID from a bare ID or <@&id>.
func RoleID(raw string) (string, bool) { return matchID(roleMentionRe, raw) }

// ChannelID extracts the ID from a bare ID or <#id>.
func ChannelID(raw string) (string, bool) { return matchID(channelMentionRe, raw) }

// CustomEmoji parses <:name:id> and <a:name:id>.
func CustomEmoji(raw string) (name, id string, animated, ok bool) {
	m := emojiRe.FindStringSubmatch(raw)
	if m == nil {
		return "", "", false, false
	}
	return m[2], m[3], m[1] == "a", true
}

// AnyID extracts a snowflake from a bare ID or any mention form.
func AnyID(raw string) (string, bool) {
	for _, re := range []*regexp.Regexp{userMentionRe, roleMentionRe, channelMentionRe} {
		if id, ok := matchID(re, raw); ok {
			return id, true
		}
	}
	if _, id, _, ok := CustomEmoji(raw); ok {
		return id, true
	}
	return "", false
}

// StripMention returns content without a leading mention of botID, and
// whether one was present.
func StripMention(content, botID string) (string, bool) {
	if botID == "" {
		return content, false
	}
	for _, p := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if rest, ok := strings.CutPrefix(content, p); ok {
			return strings.TrimLeft(rest, " \t\n"), true
		}
	}
	return content, false
}

// splitTag splits "name#1234" into its parts. ok is false when raw has no
// four digit discriminator.
func splitTag(raw string) (name, discriminator string, ok bool) {
	i := strings.LastIndexByte(raw, '#')
	if i <= 0 || len(raw)-i-1 != 4 {
		return "", "", false
	}
	for _, r := range raw[i+1:] {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	return raw[:i], raw[i+1:], true
}
