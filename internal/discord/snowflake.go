package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/pkg/args"
)

// Snowflake is a Discord ID given as a bare number or inside any mention. It
// converts itself, so it can be declared as a parameter type directly.
type Snowflake string

func (Snowflake) Convert(_ context.Context, _ *args.Context, raw string) (any, error) {
	id, ok := AnyID(raw)
	if !ok {
		return nil, badSnowflake(raw)
	}
	return Snowflake(id), nil
}

// Time returns the creation time encoded in the ID.
func (s Snowflake) Time() (time.Time, error) {
	return discordgo.SnowflakeTimestamp(string(s))
}

func (s Snowflake) String() string { return string(s) }

func badSnowflake(raw string) error {
	return fmt.Errorf("%w: %q is not an ID or mention", args.ErrBadArgument, raw)
}
