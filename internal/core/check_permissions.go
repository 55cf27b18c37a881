package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/pkg/cmd"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:     "Kick Members",
	discordgo.PermissionBanMembers:      "Ban Members",
	discordgo.PermissionAdministrator:   "Administrator",
	discordgo.PermissionManageChannels:  "Manage Channels",
	discordgo.PermissionManageGuild:     "Manage Server",
	discordgo.PermissionViewChannel:     "View Channel",
	discordgo.PermissionSendMessages:    "Send Messages",
	discordgo.PermissionManageMessages:  "Manage Messages",
	discordgo.PermissionMentionEveryone: "Mention Everyone",
	discordgo.PermissionManageRoles:     "Manage Roles",
	discordgo.PermissionModerateMembers: "Moderate Members",
}

// PermissionName returns a readable name for a permission bit.
func PermissionName(p int64) string {
	if name, ok := PermissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", p)
}

// ErrGuildRequired is returned by CheckUserPermissions for restricted
// commands used outside a guild.
var ErrGuildRequired = errors.New("this command can only be used in a server")

// PermissionError reports that the author holds none of the permissions a
// command asks for.
type PermissionError struct {
	Command  string
	Required []int64
}

func (e *PermissionError) Error() string {
	allowed := make([]string, 0, len(e.Required))
	for _, p := range e.Required {
		allowed = append(allowed, PermissionName(p))
	}
	return fmt.Sprintf(
		"You need at least one of the following permissions to run this command:\n`%s`",
		strings.Join(allowed, "`, `"),
	)
}

// CheckUserPermissions refuses commands whose PermissionRequirer list the
// author holds none of. Administrators always pass; commands without
// requirements are open. Permissions come from the state cache.
func CheckUserPermissions() cmd.Check {
	return func(_ context.Context, c cmd.Command, inv *cmd.Invocation) error {
		pr, ok := cmd.Root(c).(PermissionRequirer)
		if !ok || len(pr.UserPermissions()) == 0 {
			return nil
		}
		mc, ok := FromInvocation(inv)
		if !ok {
			return nil
		}
		if mc.GuildID() == "" {
			return ErrGuildRequired
		}

		perms, err := mc.Session.State.UserChannelPermissions(mc.Event.Author.ID, mc.Event.ChannelID)
		if err != nil {
			return fmt.Errorf("failed to get user permissions: %w", err)
		}
		if !HasAnyPermission(perms, pr.UserPermissions()) {
			return &PermissionError{Command: c.Name(), Required: pr.UserPermissions()}
		}
		return nil
	}
}

// HasAnyPermission reports whether perms includes Administrator or any of
// required. An empty required list always passes.
func HasAnyPermission(perms int64, required []int64) bool {
	if len(required) == 0 || perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, p := range required {
		if perms&p != 0 {
			return true
		}
	}
	return false
}
