package discord

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"tunelink/internal/config"
	"tunelink/internal/core"
	"tunelink/internal/lyrics"
	"tunelink/internal/music/lavalink"
	"tunelink/internal/music/session"
	"tunelink/internal/storage"

	_ "tunelink/internal/commands"

	"github.com/bwmarrin/discordgo"
)

// Bot is the Discord side of the service. It owns the gateway session and
// wires interactions to the command registry and the playback layer.
type Bot struct {
	dg      *discordgo.Session
	storage *storage.Storage
	cfg     *config.Config
	lyrics  *lyrics.Client

	setupOnce sync.Once
	mu        sync.RWMutex
	audio     *lavalink.Client
	players   *session.Manager
}

// NewBot builds the bot; call Run to connect.
func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{
		cfg:     cfg,
		storage: store,
		lyrics:  lyrics.New(cfg.GeniusToken),
	}
}

// Sessions exposes the playback manager, nil until the gateway is ready.
func (b *Bot) Sessions() *session.Manager {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.players
}

// BotUser returns the bot's tag once known.
func (b *Bot) BotUser() string {
	if b.dg == nil || b.dg.State.User == nil {
		return ""
	}
	return b.dg.State.User.String()
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onVoiceServerUpdate)
	dg.AddHandler(b.onVoiceStateUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")

	b.mu.RLock()
	players, audio := b.players, b.audio
	b.mu.RUnlock()
	if players != nil {
		players.Shutdown(context.Background())
	}
	if audio != nil {
		audio.Close()
	}
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	b.setupOnce.Do(func() {
		if err := b.setupAudio(botInfo.ID); err != nil {
			log.Printf("[ERR] Audio node setup failed: %v", err)
		}
	})

	// Leave any blacklisted guilds on startup
	for _, g := range r.Guilds {
		if b.isGuildBlacklisted(g.ID) {
			log.Printf("[INFO] Leaving blacklisted guild: %s (%s)", g.ID, g.Name)
			if err := s.GuildLeave(g.ID); err != nil {
				log.Printf("[ERR] Failed to leave guild %s: %v", g.ID, err)
			}
			continue
		}

		if b.cfg.InitSlashCommands {
			if err := b.registerCommands(g.ID); err != nil {
				log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
			}
		} else {
			log.Println("[INFO] Registering slash commands skipped")
		}
	}

	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// setupAudio connects the audio node and builds the playback manager.
func (b *Bot) setupAudio(botUserID string) error {
	audio, err := lavalink.New(botUserID, b.dg)
	if err != nil {
		return err
	}
	if err := audio.Connect(context.Background(), b.cfg); err != nil {
		return err
	}

	players := session.NewManager(audio, audio, b.storage, &notifier{dg: b.dg}, b.cfg.DefaultVolume)
	audio.SetTrackEndHandler(players)

	b.mu.Lock()
	b.audio = audio
	b.players = players
	b.mu.Unlock()
	return nil
}

// onGuildCreate is called when a guild is created
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)

	if b.isGuildBlacklisted(g.Guild.ID) {
		log.Printf("[INFO] Leaving blacklisted guild: %s (%s)", g.Guild.ID, g.Guild.Name)
		if err := s.GuildLeave(g.Guild.ID); err != nil {
			log.Printf("[ERR] Failed to leave guild %s: %v", g.Guild.ID, err)
		}
		return
	}

	if b.cfg.InitSlashCommands {
		if err := b.registerCommands(g.Guild.ID); err != nil {
			log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
		}
	}
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}

// normalizeDefinition normalizes a command definition
func normalizeDefinition(cmd core.Command) *discordgo.ApplicationCommand {
	if slash, ok := cmd.(core.SlashProvider); ok {
		if def := slash.SlashDefinition(); def != nil {
			if def.Type == 0 {
				def.Type = discordgo.ChatApplicationCommand
			}
			return def
		}
	}
	return nil
}
