package core

import (
	"fmt"

	"tunelink/internal/core"
	"tunelink/internal/version"

	"github.com/bwmarrin/discordgo"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string             { return "about" }
func (c *AboutCommand) Description() string      { return "About this bot" }
func (c *AboutCommand) Group() string            { return "core" }
func (c *AboutCommand) Category() string         { return "🛠️ Maintenance" }
func (c *AboutCommand) UserPermissions() []int64 { return []int64{} }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	sessions := 0
	if context.Players != nil {
		sessions = context.Players.ActiveSessions()
	}

	return core.RespondEmbed(context.Session, context.Event, &discordgo.MessageEmbed{
		Title: version.AppName,
		Description: fmt.Sprintf(
			"A music bot for your voice channels.\n\nVersion: `%s`\nBuilt: `%s`\nActive sessions: `%d`",
			version.Version, version.BuildDate, sessions,
		),
		Color: core.EmbedColor,
	})
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&AboutCommand{},
			core.WithCommandLogger(),
		),
	)
}
