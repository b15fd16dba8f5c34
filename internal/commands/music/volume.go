package music

import (
	"context"
	"fmt"

	"tunelink/internal/core"
	"tunelink/internal/music/session"

	"github.com/bwmarrin/discordgo"
)

func handleVolume(ctx *core.SlashInteractionContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}

	applied := sess.SetVolume(context.Background(), int(sub.Options[0].IntValue()))
	return core.Respond(ctx.Session, ctx.Event, fmt.Sprintf("🔊 Volume set to %d.", applied))
}

func handleLoop(ctx *core.SlashInteractionContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}

	mode, err := session.ParseLoopMode(sub.Options[0].StringValue())
	if err != nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Loop mode must be off, track or queue.")
	}
	sess.SetLoop(mode)
	return core.Respond(ctx.Session, ctx.Event, fmt.Sprintf("🔁 Loop mode: %s.", mode))
}

// handleBlast starts the confirmation flow. The actual volume change only
// happens after the requester confirms through the modal; nobody else can
// press their button.
func handleBlast(ctx *core.SlashInteractionContext, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	if _, err := existingSession(ctx); err != nil {
		return nil
	}

	seconds := int64(session.BlastDefaultDuration.Seconds())
	if len(sub.Options) > 0 {
		seconds = sub.Options[0].IntValue()
	}
	if seconds <= 0 {
		seconds = int64(session.BlastDefaultDuration.Seconds())
	}
	if seconds > int64(session.BlastMaxDuration.Seconds()) {
		seconds = int64(session.BlastMaxDuration.Seconds())
	}

	return blastPrompt(ctx.Session, ctx.Event, ctx.Event.Member.User.ID, seconds)
}

// blastPrompt posts the ephemeral warning with the requester-locked button
// that starts the confirmation flow.
func blastPrompt(s *discordgo.Session, event *discordgo.InteractionCreate, userID string, seconds int64) error {
	return s.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf(
				"⚠️ This will crank the volume to %d for %d seconds. Everyone in the channel will hear it at full force.",
				session.BlastVolume, seconds,
			),
			Flags: discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "I understand",
							Style:    discordgo.DangerButton,
							CustomID: fmt.Sprintf("%s:%s:%d", blastButtonID, userID, seconds),
						},
					},
				},
			},
		},
	})
}
