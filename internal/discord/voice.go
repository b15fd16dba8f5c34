package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// onVoiceServerUpdate forwards voice server credentials to the audio node.
func (b *Bot) onVoiceServerUpdate(s *discordgo.Session, e *discordgo.VoiceServerUpdate) {
	b.mu.RLock()
	audio := b.audio
	b.mu.RUnlock()
	if audio == nil {
		return
	}
	audio.OnVoiceServerUpdate(context.Background(), e.GuildID, e.Token, e.Endpoint)
}

// onVoiceStateUpdate forwards the bot's own voice state to the audio node.
// Other users' state changes are irrelevant to the node.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if s.State.User == nil || e.UserID != s.State.User.ID {
		return
	}
	b.mu.RLock()
	audio := b.audio
	b.mu.RUnlock()
	if audio == nil {
		return
	}
	audio.OnVoiceStateUpdate(context.Background(), e.GuildID, e.ChannelID, e.SessionID)
}
