package command

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the command definition.
func (c *PingCommand) Definition() tgbotapi.BotCommand {
	return tgbotapi.BotCommand{
		Command:     "ping",
		Description: "Responds with Pong!",
	}
}

// AdminOnly reports the admin gate for /ping.
func (c *PingCommand) AdminOnly() bool {
	return false
}

// VotersCommand defines the structure for the /voters command.
type VotersCommand struct{}

// Definition returns the command definition.
func (c *VotersCommand) Definition() tgbotapi.BotCommand {
	return tgbotapi.BotCommand{
		Command:     "voters",
		Description: "Show the voters list for a ride post (message id or t.me link)",
	}
}

// AdminOnly reports the admin gate for /voters.
func (c *VotersCommand) AdminOnly() bool {
	return true
}
