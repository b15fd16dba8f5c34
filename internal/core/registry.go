package core

var registry = map[string]Command{}

// RegisterCommand registers a command
func RegisterCommand(cmd Command) {
	registry[cmd.Name()] = cmd
}

// GetCommand returns the command with the given name
func GetCommand(name string) (Command, bool) {
	cmd, ok := registry[name]
	return cmd, ok
}

// AllCommands returns all registered commands
func AllCommands() []Command {
	list := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		list = append(list, cmd)
	}
	return list
}

// FindComponentHandler returns the command claiming the given customID, if
// any. Matching is by prefix so handlers can encode state after a colon.
func FindComponentHandler(customID string) (Command, ComponentInteractionHandler, bool) {
	for _, cmd := range registry {
		ch, ok := unwrapComponentHandler(cmd)
		if !ok {
			continue
		}
		for _, id := range ch.ComponentIDs() {
			if hasIDPrefix(customID, id) {
				return cmd, ch, true
			}
		}
	}
	return nil, nil, false
}

// FindModalHandler returns the command claiming the given modal customID.
func FindModalHandler(customID string) (Command, ModalInteractionHandler, bool) {
	for _, cmd := range registry {
		mh, ok := unwrapModalHandler(cmd)
		if !ok {
			continue
		}
		for _, id := range mh.ModalIDs() {
			if hasIDPrefix(customID, id) {
				return cmd, mh, true
			}
		}
	}
	return nil, nil, false
}

func hasIDPrefix(customID, prefix string) bool {
	if customID == prefix {
		return true
	}
	return len(customID) > len(prefix) && customID[:len(prefix)] == prefix && customID[len(prefix)] == ':'
}
