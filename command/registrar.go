// Package command declares the bot's command menu. The handlers package
// implements the command logic; this package only carries definitions and
// the admin gate.
package command

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Command is an interface for bot menu commands.
type Command interface {
	Definition() tgbotapi.BotCommand
	AdminOnly() bool
}

// AllCommands holds all the command instances.
var AllCommands = []Command{
	&PingCommand{},
	&VotersCommand{},
}

// Definitions returns a slice of all command definitions, ready for
// SetMyCommands.
func Definitions() []tgbotapi.BotCommand {
	defs := make([]tgbotapi.BotCommand, len(AllCommands))
	for i, cmd := range AllCommands {
		defs[i] = cmd.Definition()
	}
	return defs
}

// IsAdminOnly reports whether the named command is gated on the configured
// admin user ids. Unknown commands are treated as admin-only.
func IsAdminOnly(name string) bool {
	for _, cmd := range AllCommands {
		if cmd.Definition().Command == name {
			return cmd.AdminOnly()
		}
	}
	return true
}
