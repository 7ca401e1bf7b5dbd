package main

import (
	"ride-bot/bot"
	"ride-bot/command"
	"ride-bot/handlers"
)

func main() {
	bot.Run(handlers.Register, command.Definitions())
}
