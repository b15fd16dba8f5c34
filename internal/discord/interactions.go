package discord

import (
	"fmt"
	"log"

	"tunelink/internal/core"
	"tunelink/internal/web"

	"github.com/bwmarrin/discordgo"
)

// onInteractionCreate routes slash commands, component presses and modal
// submissions to the registered commands.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cmdName := i.ApplicationCommandData().Name

		cmd, ok := core.GetCommand(cmdName)
		if !ok {
			log.Printf("[WARN] Unknown command: %s", cmdName)
			return
		}

		web.CommandsHandled.WithLabelValues(cmdName).Inc()
		ctx := &core.SlashInteractionContext{
			Session: s,
			Event:   i,
			Storage: b.storage,
			Players: b.Sessions(),
			Lyrics:  b.lyrics,
			Config:  b.cfg,
		}
		if err := cmd.Run(ctx); err != nil {
			log.Println("[ERR] Error running slash command:", err)
			core.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{ //nolint:errcheck
				Description: fmt.Sprintf("Error running slash command: %v", err),
			})
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID

		cmd, handler, ok := core.FindComponentHandler(customID)
		if !ok {
			log.Printf("[WARN] No matching component for customID: %s", customID)
			return
		}

		web.CommandsHandled.WithLabelValues(cmd.Name()).Inc()
		ctx := &core.ComponentInteractionContext{
			Session: s,
			Event:   i,
			Storage: b.storage,
			Players: b.Sessions(),
			Lyrics:  b.lyrics,
			Config:  b.cfg,
		}
		if err := handler.Component(ctx); err != nil {
			log.Printf("[ERR] Error running component %s: %v", customID, err)
			core.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{ //nolint:errcheck
				Description: fmt.Sprintf("Error running component: %v", err),
			})
		}

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID

		cmd, handler, ok := core.FindModalHandler(customID)
		if !ok {
			log.Printf("[WARN] No matching modal for customID: %s", customID)
			return
		}

		web.CommandsHandled.WithLabelValues(cmd.Name()).Inc()
		ctx := &core.ModalInteractionContext{
			Session: s,
			Event:   i,
			Storage: b.storage,
			Players: b.Sessions(),
			Config:  b.cfg,
		}
		if err := handler.Modal(ctx); err != nil {
			log.Printf("[ERR] Error running modal %s: %v", customID, err)
		}
	}
}
