// Package commands pulls in every command package so their init functions
// register with the core registry.
package commands

import (
	_ "tunelink/internal/commands/core"
	_ "tunelink/internal/commands/lyrics"
	_ "tunelink/internal/commands/music"
	_ "tunelink/internal/commands/settings"
)
