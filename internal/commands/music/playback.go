package music

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tunelink/internal/core"
	"tunelink/internal/music/session"

	"github.com/bwmarrin/discordgo"
)

// ensureSession returns the guild's playback session, creating one in the
// invoker's voice channel when needed. User-facing errors are already
// responded to; the caller just bails on error.
func ensureSession(ctx *core.SlashInteractionContext) (*session.Session, error) {
	if ctx.Players == nil {
		core.RespondEphemeral(ctx.Session, ctx.Event, "Still starting up, try again in a moment.") //nolint:errcheck
		return nil, session.ErrNoSession
	}

	event := ctx.Event
	voiceChannel := core.UserVoiceChannel(ctx.Session, event.GuildID, event.Member.User.ID)

	sess, err := ctx.Players.CreateOrGet(context.Background(), event.GuildID, voiceChannel, event.ChannelID)
	if err != nil {
		respondSessionError(ctx, err)
		return nil, err
	}
	return sess, nil
}

// existingSession returns the guild's session without creating one.
func existingSession(ctx *core.SlashInteractionContext) (*session.Session, error) {
	if ctx.Players == nil {
		core.RespondEphemeral(ctx.Session, ctx.Event, "Still starting up, try again in a moment.") //nolint:errcheck
		return nil, session.ErrNoSession
	}
	sess, err := ctx.Players.Get(ctx.Event.GuildID)
	if err != nil {
		respondSessionError(ctx, err)
		return nil, err
	}
	return sess, nil
}

func respondSessionError(ctx *core.SlashInteractionContext, err error) {
	var msg string
	var gwErr *session.GatewayError
	switch {
	case errors.Is(err, session.ErrNotInVoice):
		msg = "Join a voice channel first."
	case errors.Is(err, session.ErrNoSession):
		msg = "Nothing is playing here."
	case errors.Is(err, session.ErrNothingPlaying):
		msg = "Nothing is playing right now."
	case errors.As(err, &gwErr):
		msg = "Couldn't connect to the voice channel. Try again in a moment."
	default:
		msg = "Something went wrong. Try again in a moment."
	}
	if e := core.RespondEphemeral(ctx.Session, ctx.Event, msg); e != nil {
		log.Printf("[WARN] Failed to respond: %v", e)
	}
}

func handlePlay(ctx *core.SlashInteractionContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	query := sub.Options[0].StringValue()

	sess, err := ensureSession(ctx)
	if err != nil {
		return nil
	}

	// Resolution can take a while; acknowledge first.
	if err := core.RespondDeferred(ctx.Session, ctx.Event); err != nil {
		return err
	}

	user := ctx.Event.Member.User
	added, err := sess.Enqueue(context.Background(), query, user.Username, user.ID)
	if err != nil {
		var resolveErr *session.ResolveError
		switch {
		case errors.Is(err, session.ErrNoResults):
			return core.FollowupContent(ctx.Session, ctx.Event, fmt.Sprintf("No results for `%s`.", query))
		case errors.As(err, &resolveErr):
			log.Printf("[ERR] Resolve %q failed: %v", query, err)
			return core.FollowupContent(ctx.Session, ctx.Event, "Couldn't load that. Try a different link or query.")
		default:
			return core.FollowupContent(ctx.Session, ctx.Event, "Something went wrong while queueing that.")
		}
	}

	desc := "Added to queue"
	if added > 1 {
		desc = fmt.Sprintf("Added %d tracks to queue", added)
	}
	return core.FollowupEmbed(ctx.Session, ctx.Event, &discordgo.MessageEmbed{
		Title:       "➕ Track(s) Added",
		Description: desc,
		Color:       core.EmbedColor,
	})
}

func handleSkip(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}
	if err := sess.Skip(context.Background()); err != nil {
		respondSessionError(ctx, err)
		return nil
	}
	return core.Respond(ctx.Session, ctx.Event, "⏭️ Skipped.")
}

func handlePause(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}
	if err := sess.Pause(context.Background()); err != nil {
		respondSessionError(ctx, err)
		return nil
	}
	return core.Respond(ctx.Session, ctx.Event, "⏸️ Paused.")
}

func handleResume(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}
	if err := sess.Resume(context.Background()); err != nil {
		respondSessionError(ctx, err)
		return nil
	}
	return core.Respond(ctx.Session, ctx.Event, "▶️ Resumed.")
}

func handleStop(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}
	if err := sess.Stop(context.Background()); err != nil {
		respondSessionError(ctx, err)
		return nil
	}
	return core.Respond(ctx.Session, ctx.Event, "⏹️ Stopped and left the channel.")
}

func handleJoin(ctx *core.SlashInteractionContext) error {
	if _, err := ensureSession(ctx); err != nil {
		return nil
	}
	return core.Respond(ctx.Session, ctx.Event, "👋 Joined your voice channel.")
}

func handleLeave(ctx *core.SlashInteractionContext) error {
	return handleStop(ctx)
}
