package music

import (
	"fmt"
	"strings"

	"tunelink/internal/core"
	"tunelink/internal/music/session"

	"github.com/bwmarrin/discordgo"
)

// queueDisplayLimit is how many upcoming tracks the queue embed lists.
const queueDisplayLimit = 10

func handleQueue(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}
	return core.RespondEmbed(ctx.Session, ctx.Event, queueEmbed(sess))
}

func queueEmbed(sess *session.Session) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎶 Queue",
		Color: core.EmbedColor,
	}

	var sb strings.Builder
	if current, ok := sess.Current(); ok {
		sb.WriteString("**Now playing**\n")
		sb.WriteString(trackLine(current))
		sb.WriteString("\n\n")
	}

	queue := sess.Queue()
	if len(queue) == 0 {
		sb.WriteString("The queue is empty.")
	} else {
		sb.WriteString("**Up next**\n")
		for i, t := range queue {
			if i >= queueDisplayLimit {
				sb.WriteString(fmt.Sprintf("…and %d more", len(queue)-queueDisplayLimit))
				break
			}
			sb.WriteString(fmt.Sprintf("`%2d.` %s\n", i+1, trackLine(t)))
		}
	}

	embed.Description = sb.String()
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Loop: %s | Volume: %d", sess.Loop(), sess.Volume()),
	}
	return embed
}

func trackLine(t session.Track) string {
	title := t.Title
	if title == "" {
		title = t.URI
	}
	line := title
	if t.URI != "" {
		line = fmt.Sprintf("[%s](%s)", title, t.URI)
	}
	if d := t.DurationString(); d != "" {
		line += " `" + d + "`"
	}
	if t.Requester != "" {
		line += " — " + t.Requester
	}
	return line
}

func handleNowPlaying(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}

	current, ok := sess.Current()
	if !ok {
		return core.RespondEphemeral(ctx.Session, ctx.Event, "Nothing is playing right now.")
	}

	embed := NowPlayingEmbed(current, len(sess.Queue()))
	return ctx.Session.InteractionRespond(ctx.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: ControlPanel(),
		},
	})
}

// NowPlayingEmbed renders the current track card used both by the slash
// command and the automatic announcements.
func NowPlayingEmbed(t session.Track, queueLen int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🎵 Now Playing",
		Description: trackLine(t),
		Color:       core.EmbedColor,
	}
	if t.Author != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Artist",
			Value:  t.Author,
			Inline: true,
		})
	}
	if queueLen > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Queue",
			Value:  fmt.Sprintf("%d track(s)", queueLen),
			Inline: true,
		})
	}
	if t.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.Thumbnail}
	}
	return embed
}

func handleShuffle(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}
	sess.Shuffle()
	return core.Respond(ctx.Session, ctx.Event, "🔀 Queue shuffled.")
}

func handleClear(ctx *core.SlashInteractionContext) error {
	sess, err := existingSession(ctx)
	if err != nil {
		return nil
	}
	sess.ClearQueue()
	return core.Respond(ctx.Session, ctx.Event, "🗑️ Queue cleared.")
}
