package discord

import (
	"fmt"
	"log"

	musiccmd "tunelink/internal/commands/music"
	"tunelink/internal/music/session"
	"tunelink/internal/web"

	"github.com/bwmarrin/discordgo"
)

// notifier posts playback status messages to the guild's text channel.
type notifier struct {
	dg *discordgo.Session
}

func (n *notifier) NowPlaying(guildID, channelID string, t session.Track, queueLen int) {
	web.TracksPlayed.Inc()
	if channelID == "" {
		return
	}
	_, err := n.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{musiccmd.NowPlayingEmbed(t, queueLen)},
		Components: musiccmd.ControlPanel(),
	})
	if err != nil {
		log.Printf("[WARN] Failed to announce track in guild %s: %v", guildID, err)
	}
}

func (n *notifier) IdleDisconnect(guildID, channelID string) {
	web.IdleDisconnects.Inc()
	if channelID == "" {
		return
	}
	_, err := n.dg.ChannelMessageSend(channelID, "Inactive for 2 minutes — disconnected.")
	if err != nil {
		log.Printf("[WARN] Failed to announce idle disconnect in guild %s: %v", guildID, err)
	}
}

func (n *notifier) VolumeRestored(guildID, channelID string, volume int) {
	if channelID == "" {
		return
	}
	_, err := n.dg.ChannelMessageSend(channelID, fmt.Sprintf("🔊 Blast over. Volume restored to %d.", volume))
	if err != nil {
		log.Printf("[WARN] Failed to announce volume restore in guild %s: %v", guildID, err)
	}
}
