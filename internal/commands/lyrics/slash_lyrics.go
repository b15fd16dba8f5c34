package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"tunelink/internal/core"
	"tunelink/internal/lyrics"

	"github.com/bwmarrin/discordgo"
)

type LyricsCommand struct{}

func (c *LyricsCommand) Name() string             { return "lyrics" }
func (c *LyricsCommand) Description() string      { return "Look up song lyrics" }
func (c *LyricsCommand) Group() string            { return "music" }
func (c *LyricsCommand) Category() string         { return "🎵 Music" }
func (c *LyricsCommand) UserPermissions() []int64 { return []int64{} }

func (c *LyricsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "song",
				Description: "Song to look up; defaults to the one playing",
			},
		},
	}
}

func (c *LyricsCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	session, event := sctx.Session, sctx.Event

	if sctx.Lyrics == nil || !sctx.Lyrics.Enabled() {
		return core.RespondEphemeral(session, event, "Lyrics lookup is not configured.")
	}

	query := ""
	if opts := event.ApplicationCommandData().Options; len(opts) > 0 {
		query = strings.TrimSpace(opts[0].StringValue())
	}
	if query == "" {
		if sctx.Players == nil {
			return core.RespondEphemeral(session, event, "Nothing is playing. Name a song instead.")
		}
		sess, err := sctx.Players.Get(event.GuildID)
		if err != nil {
			return core.RespondEphemeral(session, event, "Nothing is playing. Name a song instead.")
		}
		current, ok := sess.Current()
		if !ok {
			return core.RespondEphemeral(session, event, "Nothing is playing. Name a song instead.")
		}
		query = strings.TrimSpace(current.Author + " " + current.Title)
	}

	if err := core.RespondDeferred(session, event); err != nil {
		return err
	}

	song, text, err := sctx.Lyrics.Lyrics(context.Background(), query)
	if err != nil {
		if errors.Is(err, lyrics.ErrNotFound) {
			return core.FollowupContent(session, event, fmt.Sprintf("No lyrics found for `%s`.", query))
		}
		log.Printf("[ERR] Lyrics lookup for %q failed: %v", query, err)
		return core.FollowupContent(session, event, "Lyrics lookup failed. Try again later.")
	}

	for i, chunk := range lyrics.Chunk(text, lyrics.EmbedChunkLimit) {
		embed := &discordgo.MessageEmbed{Description: chunk, Color: core.EmbedColor}
		if i == 0 {
			embed.Title = fmt.Sprintf("🎤 %s — %s", song.Artist, song.Title)
			embed.URL = song.URL
		}
		if err := core.FollowupEmbed(session, event, embed); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&LyricsCommand{},
			core.WithGuildOnly(),
			core.WithCommandLogger(),
		),
	)
}
