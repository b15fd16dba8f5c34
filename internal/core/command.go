package core

import (
	"tunelink/internal/config"
	"tunelink/internal/lyrics"
	"tunelink/internal/music/session"
	"tunelink/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	UserPermissions() []int64
	Run(ctx interface{}) error
}

// Providers - how this command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Contexts - what runtime hands you when executing a command
// Slash command
type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	Players *session.Manager
	Lyrics  *lyrics.Client
	Config  *config.Config
}

// Component interaction (button, select menu)
type ComponentInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	Players *session.Manager
	Lyrics  *lyrics.Client
	Config  *config.Config
}

// Hook for component beyond Run
type ComponentInteractionHandler interface {
	// ComponentIDs lists the customID prefixes this command claims.
	ComponentIDs() []string
	Component(*ComponentInteractionContext) error
}

// Modal submit
type ModalInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	Players *session.Manager
	Config  *config.Config
}

// Hook for modal submissions
type ModalInteractionHandler interface {
	ModalIDs() []string
	Modal(*ModalInteractionContext) error
}
