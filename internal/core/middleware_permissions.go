package core

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:        "Kick Members",
	discordgo.PermissionBanMembers:         "Ban Members",
	discordgo.PermissionAdministrator:      "Administrator",
	discordgo.PermissionManageChannels:     "Manage Channels",
	discordgo.PermissionManageServer:       "Manage Server",
	discordgo.PermissionManageMessages:     "Manage Messages",
	discordgo.PermissionManageRoles:        "Manage Roles",
	discordgo.PermissionModerateMembers:    "Moderate Members",
	discordgo.PermissionVoiceConnect:       "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:         "Speak",
	discordgo.PermissionVoiceMuteMembers:   "Mute Members",
	discordgo.PermissionVoiceDeafenMembers: "Deafen Members",
	discordgo.PermissionVoiceMoveMembers:   "Move Members",
}

// WithUserPermissionCheck gates commands that declare UserPermissions.
// Semantics: default allow (empty list = open command), any-of matching,
// administrators and the guild owner always bypass.
func WithUserPermissionCheck() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				var s *discordgo.Session
				var event *discordgo.InteractionCreate

				switch v := ctx.(type) {
				case *SlashInteractionContext:
					s, event = v.Session, v.Event
				case *ComponentInteractionContext:
					s, event = v.Session, v.Event
				default:
					return runInner(cmd, ctx)
				}

				m := event.Member
				if event.GuildID == "" || m == nil {
					return runInner(cmd, ctx)
				}

				required := cmd.UserPermissions()
				if len(required) == 0 {
					return runInner(cmd, ctx)
				}

				if isGuildOwner(s, event.GuildID, m.User.ID) {
					return runInner(cmd, ctx)
				}

				memberPerms, err := s.UserChannelPermissions(m.User.ID, event.ChannelID)
				if err != nil {
					return fmt.Errorf("failed to get user permissions: %w", err)
				}

				if memberPerms&discordgo.PermissionAdministrator != 0 {
					return runInner(cmd, ctx)
				}

				for _, p := range required {
					if memberPerms&p != 0 {
						return runInner(cmd, ctx)
					}
				}

				var allowed []string
				for _, p := range required {
					name := PermissionNames[p]
					if name == "" {
						name = fmt.Sprintf("0x%x", p)
					}
					allowed = append(allowed, name)
				}
				msg := fmt.Sprintf(
					"You need at least one of the following permissions to run this command:\n`%s`",
					strings.Join(allowed, "`, `"),
				)
				return RespondEphemeral(s, event, msg)
			},
		}
	}
}

func isGuildOwner(s *discordgo.Session, guildID, userID string) bool {
	guild, err := s.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, err = s.Guild(guildID)
		if err != nil || guild == nil {
			return false
		}
	}
	return guild.OwnerID == userID
}
