package settings

import (
	"fmt"
	"log"

	"tunelink/internal/core"

	"github.com/bwmarrin/discordgo"
)

type AlwaysOnCommand struct{}

func (c *AlwaysOnCommand) Name() string        { return "247" }
func (c *AlwaysOnCommand) Description() string { return "Keep the bot in voice around the clock" }
func (c *AlwaysOnCommand) Group() string       { return "settings" }
func (c *AlwaysOnCommand) Category() string    { return "⚙️ Settings" }
func (c *AlwaysOnCommand) UserPermissions() []int64 {
	return []int64{
		discordgo.PermissionManageServer,
	}
}

func (c *AlwaysOnCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "on",
				Description: "Stay connected even when the queue is empty",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "off",
				Description: "Disconnect after two minutes of inactivity",
			},
		},
	}
}

func (c *AlwaysOnCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	options := context.Event.ApplicationCommandData().Options
	if len(options) == 0 {
		return nil
	}
	enabled := options[0].Name == "on"

	if err := context.Storage.SetAlwaysOn(context.Event.GuildID, enabled); err != nil {
		log.Printf("[ERR] Failed to store 24/7 flag for guild %s: %v", context.Event.GuildID, err)
		return core.RespondEphemeral(context.Session, context.Event, "Couldn't save that setting. Try again.")
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return core.Respond(context.Session, context.Event, fmt.Sprintf("🕐 24/7 mode %s.", state))
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&AlwaysOnCommand{},
			core.WithGuildOnly(),
			core.WithUserPermissionCheck(),
			core.WithCommandLogger(),
		),
	)
}
