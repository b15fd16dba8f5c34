package music

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tunelink/internal/core"
	"tunelink/internal/lyrics"
	"tunelink/internal/music/session"

	"github.com/bwmarrin/discordgo"
)

const (
	panelID       = "music_panel"
	blastButtonID = "music_blast"
	blastModalID  = "music_blast_modal"

	// blastConfirmPhrase must be typed into the modal; casing is ignored.
	blastConfirmPhrase = "I AGREE"

	// volumeStep is how much the panel buttons nudge the volume.
	volumeStep = 10
)

// ControlPanel builds the button rows attached to now-playing messages.
func ControlPanel() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "⏯️"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":pause"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "⏭️"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":skip"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "🔁"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":loop"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "🔀"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":shuffle"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "🗑️"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":clear"},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "🔉"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":voldown"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "🔊"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":volup"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "📜"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":queue"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "🎤"}, Style: discordgo.SecondaryButton, CustomID: panelID + ":lyrics"},
				discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "💥"}, Style: discordgo.DangerButton, CustomID: panelID + ":blast"},
			},
		},
	}
}

func (c *MusicCommand) ComponentIDs() []string {
	return []string{panelID, blastButtonID}
}

func (c *MusicCommand) Component(ctx *core.ComponentInteractionContext) error {
	customID := ctx.Event.MessageComponentData().CustomID
	parts := strings.Split(customID, ":")

	switch parts[0] {
	case blastButtonID:
		return c.blastButton(ctx, parts)
	case panelID:
		if len(parts) < 2 {
			return nil
		}
		return c.panelButton(ctx, parts[1])
	}
	return nil
}

func (c *MusicCommand) panelButton(ctx *core.ComponentInteractionContext, action string) error {
	if ctx.Players == nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Still starting up, try again in a moment.")
	}
	sess, err := ctx.Players.Get(ctx.Event.GuildID)
	if err != nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Nothing is playing here.")
	}

	bg := context.Background()
	switch action {
	case "pause":
		if sess.Paused() {
			err = sess.Resume(bg)
		} else {
			err = sess.Pause(bg)
		}
		if err != nil {
			return core.RespondEphemeral(ctx.Session, ctx.Event, "Nothing is playing right now.")
		}
		return core.RespondUpdate(ctx.Session, ctx.Event)
	case "skip":
		if err := sess.Skip(bg); err != nil {
			return core.RespondEphemeral(ctx.Session, ctx.Event, "Nothing is playing right now.")
		}
		return core.RespondUpdate(ctx.Session, ctx.Event)
	case "loop":
		sess.SetLoop(nextLoopMode(sess.Loop()))
		return core.RespondEphemeral(ctx.Session, ctx.Event, fmt.Sprintf("🔁 Loop mode: %s.", sess.Loop()))
	case "shuffle":
		sess.Shuffle()
		return core.RespondEphemeral(ctx.Session, ctx.Event, "🔀 Queue shuffled.")
	case "clear":
		sess.ClearQueue()
		return core.RespondEphemeral(ctx.Session, ctx.Event, "🗑️ Queue cleared.")
	case "voldown":
		applied := sess.SetVolume(bg, sess.Volume()-volumeStep)
		return core.RespondEphemeral(ctx.Session, ctx.Event, fmt.Sprintf("🔉 Volume: %d", applied))
	case "volup":
		applied := sess.SetVolume(bg, sess.Volume()+volumeStep)
		return core.RespondEphemeral(ctx.Session, ctx.Event, fmt.Sprintf("🔊 Volume: %d", applied))
	case "queue":
		return core.RespondEmbedEphemeral(ctx.Session, ctx.Event, queueEmbed(sess))
	case "lyrics":
		return c.panelLyrics(ctx, sess)
	case "blast":
		return blastPrompt(ctx.Session, ctx.Event, ctx.Event.Member.User.ID,
			int64(session.BlastDefaultDuration.Seconds()))
	}
	return nil
}

func (c *MusicCommand) panelLyrics(ctx *core.ComponentInteractionContext, sess *session.Session) error {
	current, ok := sess.Current()
	if !ok {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Nothing is playing right now.")
	}
	if ctx.Lyrics == nil || !ctx.Lyrics.Enabled() {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Lyrics lookup is not configured.")
	}

	if err := core.RespondDeferred(ctx.Session, ctx.Event); err != nil {
		return err
	}

	query := strings.TrimSpace(current.Author + " " + current.Title)
	song, text, err := ctx.Lyrics.Lyrics(context.Background(), query)
	if err != nil {
		if errors.Is(err, lyrics.ErrNotFound) {
			return core.FollowupContent(ctx.Session, ctx.Event, "No lyrics found for this track.")
		}
		log.Printf("[ERR] Lyrics lookup for %q failed: %v", query, err)
		return core.FollowupContent(ctx.Session, ctx.Event, "Lyrics lookup failed. Try again later.")
	}

	for i, chunk := range lyrics.Chunk(text, lyrics.EmbedChunkLimit) {
		embed := &discordgo.MessageEmbed{Description: chunk, Color: core.EmbedColor}
		if i == 0 {
			embed.Title = fmt.Sprintf("🎤 %s — %s", song.Artist, song.Title)
			embed.URL = song.URL
		}
		if err := core.FollowupEmbed(ctx.Session, ctx.Event, embed); err != nil {
			return err
		}
	}
	return nil
}

// blastButton gates the blast on the original requester, then asks them to
// type the confirmation phrase.
func (c *MusicCommand) blastButton(ctx *core.ComponentInteractionContext, parts []string) error {
	if len(parts) != 3 {
		return nil
	}
	requesterID, secondsRaw := parts[1], parts[2]

	if ctx.Event.Member.User.ID != requesterID {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Only the person who asked for the blast can confirm it.")
	}

	return ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: blastModalID + ":" + secondsRaw,
			Title:    "Confirm blast",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "confirmation",
							Label:       fmt.Sprintf("Type %q to confirm", blastConfirmPhrase),
							Style:       discordgo.TextInputShort,
							Required:    true,
							MaxLength:   16,
							Placeholder: blastConfirmPhrase,
						},
					},
				},
			},
		},
	})
}

func (c *MusicCommand) ModalIDs() []string {
	return []string{blastModalID}
}

func (c *MusicCommand) Modal(ctx *core.ModalInteractionContext) error {
	data := ctx.Event.ModalSubmitData()
	parts := strings.Split(data.CustomID, ":")
	if len(parts) != 2 {
		return nil
	}

	input := modalTextInput(data, "confirmation")
	if !confirmsBlast(input) {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Blast cancelled. The phrase didn't match.")
	}

	if ctx.Players == nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Still starting up, try again in a moment.")
	}
	sess, err := ctx.Players.Get(ctx.Event.GuildID)
	if err != nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Nothing is playing here.")
	}

	seconds, err := strconv.Atoi(parts[1])
	if err != nil || seconds <= 0 {
		seconds = int(session.BlastDefaultDuration.Seconds())
	}

	d := sess.Blast(context.Background(), time.Duration(seconds)*time.Second)
	return core.Respond(ctx.Session, ctx.Event,
		fmt.Sprintf("💥 BLAST! Volume %d for %.0f seconds.", session.BlastVolume, d.Seconds()))
}

// confirmsBlast accepts the phrase in any casing, with surrounding spaces.
func confirmsBlast(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), blastConfirmPhrase)
}

func modalTextInput(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

func nextLoopMode(m session.LoopMode) session.LoopMode {
	switch m {
	case session.LoopOff:
		return session.LoopTrack
	case session.LoopTrack:
		return session.LoopQueue
	default:
		return session.LoopOff
	}
}
