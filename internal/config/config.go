package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, populated from environment variables
// (with an optional .env file for local runs).
type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN,required"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	DeveloperID           string   `env:"DEVELOPER_ID"`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	LavalinkHost     string `env:"LAVALINK_HOST" envDefault:"localhost"`
	LavalinkPort     int    `env:"LAVALINK_PORT" envDefault:"2333"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD" envDefault:"youshallnotpass"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE" envDefault:"false"`

	GeniusToken string `env:"GENIUS_TOKEN"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`

	DefaultVolume int `env:"DEFAULT_VOLUME" envDefault:"100"`
}

// New loads configuration from the environment. A missing Discord token is
// fatal: the bot cannot run without it.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERR] Failed to parse configuration: %v", err)
	}
	return cfg
}
