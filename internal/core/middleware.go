package core

import (
	"github.com/bwmarrin/discordgo"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) Component(ctx *ComponentInteractionContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if ch, ok := w.Command.(ComponentInteractionHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

func (w *wrappedCommand) ComponentIDs() []string {
	if ch, ok := w.Command.(ComponentInteractionHandler); ok {
		return ch.ComponentIDs()
	}
	return nil
}

func (w *wrappedCommand) Modal(ctx *ModalInteractionContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if mh, ok := w.Command.(ModalInteractionHandler); ok {
		return mh.Modal(ctx)
	}
	return nil
}

func (w *wrappedCommand) ModalIDs() []string {
	if mh, ok := w.Command.(ModalInteractionHandler); ok {
		return mh.ModalIDs()
	}
	return nil
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// runInner dispatches ctx to the right entry point of the unwrapped command.
// Middlewares call this instead of cmd.Run so component and modal contexts
// reach their dedicated handlers.
func runInner(cmd Command, ctx interface{}) error {
	switch v := ctx.(type) {
	case *ComponentInteractionContext:
		if ch, ok := cmd.(ComponentInteractionHandler); ok {
			return ch.Component(v)
		}
		return cmd.Run(ctx)
	case *ModalInteractionContext:
		if mh, ok := cmd.(ModalInteractionHandler); ok {
			return mh.Modal(v)
		}
		return cmd.Run(ctx)
	default:
		return cmd.Run(ctx)
	}
}

func unwrapComponentHandler(cmd Command) (ComponentInteractionHandler, bool) {
	ch, ok := cmd.(ComponentInteractionHandler)
	if !ok {
		return nil, false
	}
	return ch, len(ch.ComponentIDs()) > 0
}

func unwrapModalHandler(cmd Command) (ModalInteractionHandler, bool) {
	mh, ok := cmd.(ModalInteractionHandler)
	if !ok {
		return nil, false
	}
	return mh, len(mh.ModalIDs()) > 0
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
