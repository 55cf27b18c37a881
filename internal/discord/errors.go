package discord

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
)

var friendlyTypes = map[reflect.Type]string{
	UserType:         "user",
	MemberType:       "member",
	ChannelType:      "channel",
	TextChannelType:  "text channel",
	VoiceChannelType: "voice channel",
	RoleType:         "role",
	GuildType:        "server",
	EmojiType:        "emoji",
	SnowflakeType:    "ID or mention",
}

func typeLabel(t reflect.Type) string {
	if name, ok := friendlyTypes[t]; ok {
		return name
	}
	if t == nil {
		return "text"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "whole number"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "yes/no"
	}
	return strings.ToLower(args.TypeName(t))
}

// DescribeError turns an argument binding failure into a message for the
// person who typed the command.
func DescribeError(err error) string {
	var (
		missing *args.MissingArgumentError
		resolve *args.ResolverError
		union   *args.UnionConversionError
		conv    *args.ConversionError
		tooMany *args.TooManyArgumentsError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "That took too long, please try again."
	case errors.Is(err, context.Canceled):
		return "The command was cancelled."
	case errors.As(err, &missing):
		return fmt.Sprintf("Missing argument `%s`.", missing.Param)
	case errors.As(err, &union):
		labels := make([]string, len(union.Types))
		for i, t := range union.Types {
			labels[i] = typeLabel(t)
		}
		return fmt.Sprintf("`%s` is not a valid %s for `%s`.", union.Raw, orList(labels), union.Param)
	case errors.As(err, &resolve):
		return describeResolve(resolve)
	case errors.As(err, &conv):
		msg := fmt.Sprintf("`%s` is not a valid %s for `%s`.", conv.Raw, typeLabel(conv.Type), conv.Param)
		if detail := badArgumentDetail(conv.Err); detail != "" {
			msg += " " + detail
		}
		return msg
	case errors.As(err, &tooMany):
		return fmt.Sprintf("Too many arguments, unused: `%s`.", strings.Join(tooMany.Surplus, " "))
	default:
		return "Something went wrong while reading the arguments."
	}
}

// DescribeCheckError turns a refused check into a message for the person who
// typed the command.
func DescribeCheckError(err *cmd.CheckError) string {
	var perm *core.PermissionError
	switch {
	case errors.As(err, &perm):
		return perm.Error()
	case errors.Is(err, core.ErrGuildRequired):
		return "This command can only be used in a server."
	case errors.Is(err, context.DeadlineExceeded):
		return "That took too long, please try again."
	}
	return "You can't use this command here."
}

func describeResolve(e *args.ResolverError) string {
	switch e.Kind {
	case args.NotFound:
		return fmt.Sprintf("Could not find a %s matching `%s`.", e.Entity, e.Raw)
	case args.Ambiguous:
		return fmt.Sprintf("Several %ss match `%s`, use a mention or an ID.", e.Entity, e.Raw)
	}
	if errors.Is(e.Err, ErrNoGuild) {
		return fmt.Sprintf("A %s can only be looked up inside a server.", e.Entity)
	}
	return fmt.Sprintf("Could not look up %s `%s` right now.", e.Entity, e.Raw)
}

// badArgumentDetail returns the converter's own explanation, e.g. the list
// of accepted choices, with the sentinel prefix removed.
func badArgumentDetail(err error) string {
	if err == nil || !errors.Is(err, args.ErrBadArgument) {
		return ""
	}
	msg := strings.TrimPrefix(err.Error(), args.ErrBadArgument.Error()+": ")
	if msg == err.Error() || msg == "" {
		return ""
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func orList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
	}
}
