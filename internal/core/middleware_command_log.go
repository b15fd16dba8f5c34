package core

import (
	"log"
)

// WithCommandLogger wraps a command to record its execution in the guild's
// bounded command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				// Run the actual command first
				err := runInner(cmd, ctx)

				switch v := ctx.(type) {
				case *SlashInteractionContext:
					if v.Event.Member == nil || v.Storage == nil {
						break
					}
					user := v.Event.Member.User
					if e := LogCommand(v.Session, v.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, cmd.Name()); e != nil {
						log.Printf("[WARN] Failed to log command /%s: %v", cmd.Name(), e)
					}

				case *ComponentInteractionContext:
					if v.Event.Member == nil || v.Storage == nil {
						break
					}
					user := v.Event.Member.User
					if e := LogCommand(v.Session, v.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, cmd.Name()); e != nil {
						log.Printf("[WARN] Failed to log component command /%s: %v", cmd.Name(), e)
					}
				}

				return err
			},
		}
	}
}
