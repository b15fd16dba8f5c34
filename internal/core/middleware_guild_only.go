package core

func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				switch v := ctx.(type) {
				case *SlashInteractionContext:
					if v.Event.GuildID == "" {
						return RespondEphemeral(v.Session, v.Event, "This command only works inside a server.")
					}
				case *ComponentInteractionContext:
					if v.Event.GuildID == "" {
						return RespondEphemeral(v.Session, v.Event, "This command only works inside a server.")
					}
				}
				return runInner(cmd, ctx)
			},
		}
	}
}
