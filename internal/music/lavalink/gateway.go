package lavalink

import (
	"context"
	"fmt"
	"log"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"tunelink/internal/music/session"
)

// Join asks the Discord gateway to move the bot into channelID and returns a
// handle bound to the guild's node-side player. The node finishes the voice
// handshake asynchronously once the gateway delivers the server and state
// updates.
func (c *Client) Join(ctx context.Context, guildID, channelID string) (session.VoiceHandle, error) {
	if err := c.sender.ChannelVoiceJoinManual(guildID, channelID, false, true); err != nil {
		return nil, fmt.Errorf("voice join: %w", err)
	}
	gID, err := snowflake.Parse(guildID)
	if err != nil {
		return nil, fmt.Errorf("parse guild id: %w", err)
	}
	return &playerHandle{client: c, guildID: gID, guildStr: guildID}, nil
}

// playerHandle adapts one guild's disgolink player to the playback layer.
type playerHandle struct {
	client   *Client
	guildID  snowflake.ID
	guildStr string
}

func (h *playerHandle) player() disgolink.Player {
	return h.client.link.Player(h.guildID)
}

func (h *playerHandle) Play(ctx context.Context, t session.Track) error {
	if t.Encoded == "" {
		return fmt.Errorf("track %q has no encoded payload", t.Title)
	}
	return h.player().Update(ctx, lavalink.WithEncodedTrack(t.Encoded))
}

func (h *playerHandle) Pause(ctx context.Context) error {
	return h.player().Update(ctx, lavalink.WithPaused(true))
}

func (h *playerHandle) Resume(ctx context.Context) error {
	return h.player().Update(ctx, lavalink.WithPaused(false))
}

func (h *playerHandle) Stop(ctx context.Context) error {
	return h.player().Update(ctx, lavalink.WithNullTrack())
}

func (h *playerHandle) SetVolume(ctx context.Context, v int) error {
	return h.player().Update(ctx, lavalink.WithVolume(v))
}

func (h *playerHandle) Disconnect(ctx context.Context) error {
	if err := h.sender().ChannelVoiceJoinManual(h.guildStr, "", false, true); err != nil {
		log.Printf("[WARN] Voice leave for guild %s failed: %v", h.guildStr, err)
	}
	h.client.link.RemovePlayer(h.guildID)
	return nil
}

func (h *playerHandle) sender() VoiceStateSender {
	return h.client.sender
}

func (h *playerHandle) Connected() bool {
	return h.client.link.ExistingPlayer(h.guildID) != nil
}
