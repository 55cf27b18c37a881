package discord

import (
	"context"
	"testing"
	"time"

	"github.com/keshon/textcmd/pkg/args"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMentionParsing(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) (string, bool)
		raw   string
		want  string
		ok    bool
	}{
		{"user id", UserID, aliceID, aliceID, true},
		{"user mention", UserID, "<@" + aliceID + ">", aliceID, true},
		{"nick mention", UserID, "<@!" + aliceID + ">", aliceID, true},
		{"user rejects role", UserID, "<@&" + modRoleID + ">", "", false},
		{"short id", UserID, "12345", "", false},
		{"role mention", RoleID, "<@&" + modRoleID + ">", modRoleID, true},
		{"channel mention", ChannelID, "<#" + generalID + ">", generalID, true},
		{"channel rejects user", ChannelID, "<@" + aliceID + ">", "", false},
		{"any user", AnyID, "<@!" + aliceID + ">", aliceID, true},
		{"any emoji", AnyID, "<:blob:" + emojiID + ">", emojiID, true},
		{"any text", AnyID, "hello", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.parse(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCustomEmoji(t *testing.T) {
	name, id, animated, ok := CustomEmoji("<a:dance:" + emojiID + ">")
	require.True(t, ok)
	assert.Equal(t, "dance", name)
	assert.Equal(t, emojiID, id)
	assert.True(t, animated)

	_, _, animated, ok = CustomEmoji("<:blob:" + emojiID + ">")
	assert.True(t, ok)
	assert.False(t, animated)

	_, _, _, ok = CustomEmoji("🙂")
	assert.False(t, ok)
}

func TestStripPrefix(t *testing.T) {
	const bot = "900000000000000001"
	tests := []struct {
		content  string
		mentions bool
		want     string
		ok       bool
	}{
		{"!ping", true, "ping", true},
		{"ping", true, "", false},
		{"<@" + bot + "> ping", true, "ping", true},
		{"<@!" + bot + ">   roll 2d6", true, "roll 2d6", true},
		{"<@" + bot + "> ping", false, "", false},
		{"<@" + aliceID + "> ping", true, "", false},
	}
	for _, tt := range tests {
		got, ok := StripPrefix(tt.content, "!", bot, tt.mentions)
		assert.Equal(t, tt.ok, ok, tt.content)
		assert.Equal(t, tt.want, got, tt.content)
	}

	_, ok := StripPrefix("ping", "", bot, false)
	assert.False(t, ok)
}

func TestSplitTag(t *testing.T) {
	name, disc, ok := splitTag("alice#0001")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
	assert.Equal(t, "0001", disc)

	for _, raw := range []string{"alice", "#0001", "alice#01", "alice#00a1"} {
		_, _, ok := splitTag(raw)
		assert.False(t, ok, raw)
	}
}

func TestSnowflake(t *testing.T) {
	v, err := Snowflake("").Convert(context.Background(), nil, "<#"+generalID+">")
	require.NoError(t, err)
	assert.Equal(t, Snowflake(generalID), v)

	_, err = Snowflake("").Convert(context.Background(), nil, "general")
	assert.ErrorIs(t, err, args.ErrBadArgument)

	// 175928847299117063 is the example ID from the Discord docs
	ts, err := Snowflake("175928847299117063").Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC), ts.UTC())
}
