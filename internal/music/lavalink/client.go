package lavalink

import (
	"context"
	"fmt"
	"log"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"tunelink/internal/config"
	"tunelink/internal/music/session"
)

// TrackEndHandler receives completion events from the audio node, keyed by
// guild. Replaced and cleanup events are filtered out before delivery so the
// receiver sees exactly one event per track that genuinely ended.
type TrackEndHandler interface {
	HandleTrackEnd(guildID string, reason session.EndReason)
}

// Client wraps the Lavalink node connection. It owns the disgolink client,
// translates node events into playback events and hands out per-guild voice
// handles.
type Client struct {
	link    disgolink.Client
	handler TrackEndHandler
	sender  VoiceStateSender
}

// VoiceStateSender pushes voice state updates through the Discord gateway.
// Satisfied by the bot's discordgo session.
type VoiceStateSender interface {
	ChannelVoiceJoinManual(gID, cID string, mute, deaf bool) error
}

// New connects nothing yet; call Connect with the node config before use.
// botUserID is the application's own user ID, required by the node protocol.
func New(botUserID string, sender VoiceStateSender) (*Client, error) {
	id, err := snowflake.Parse(botUserID)
	if err != nil {
		return nil, fmt.Errorf("parse bot user id: %w", err)
	}

	c := &Client{sender: sender}
	c.link = disgolink.New(id,
		disgolink.WithListenerFunc(c.onTrackEnd),
	)
	return c, nil
}

// SetTrackEndHandler installs the receiver for track completion events. Must
// be called before playback starts.
func (c *Client) SetTrackEndHandler(h TrackEndHandler) {
	c.handler = h
}

// Connect registers the audio node and opens its websocket.
func (c *Client) Connect(ctx context.Context, cfg *config.Config) error {
	node, err := c.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  fmt.Sprintf("%s:%d", cfg.LavalinkHost, cfg.LavalinkPort),
		Password: cfg.LavalinkPassword,
		Secure:   cfg.LavalinkSecure,
	})
	if err != nil {
		return fmt.Errorf("add lavalink node: %w", err)
	}
	log.Printf("[INFO] Connected to audio node %s", node.Config().Address)
	return nil
}

// Close shuts the node connection down.
func (c *Client) Close() {
	c.link.Close()
}

func (c *Client) onTrackEnd(p disgolink.Player, event lavalink.TrackEndEvent) {
	if c.handler == nil {
		return
	}
	var reason session.EndReason
	switch event.Reason {
	case lavalink.TrackEndReasonFinished:
		reason = session.EndFinished
	case lavalink.TrackEndReasonStopped:
		reason = session.EndStopped
	case lavalink.TrackEndReasonLoadFailed:
		reason = session.EndFailed
	default:
		// Replaced and cleanup are internal node transitions, not
		// completions. Forwarding them would double-advance the queue.
		return
	}
	c.handler.HandleTrackEnd(p.GuildID().String(), reason)
}

// OnVoiceServerUpdate forwards the gateway's voice server event to the node.
func (c *Client) OnVoiceServerUpdate(ctx context.Context, guildID, token, endpoint string) {
	c.link.OnVoiceServerUpdate(ctx, snowflake.MustParse(guildID), token, endpoint)
}

// OnVoiceStateUpdate forwards the bot's own voice state to the node.
// channelID is empty when the bot left the channel.
func (c *Client) OnVoiceStateUpdate(ctx context.Context, guildID, channelID, sessionID string) {
	var chID *snowflake.ID
	if channelID != "" {
		id := snowflake.MustParse(channelID)
		chID = &id
	}
	c.link.OnVoiceStateUpdate(ctx, snowflake.MustParse(guildID), chID, sessionID)
}
