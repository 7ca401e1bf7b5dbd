package utils

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Sender is the minimal messaging capability the logger needs. The gateway
// satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, chatID, replyTo int64, text string) (int64, error)
}

var (
	sender      Sender
	adminChatID int64
)

// InitLogger initializes the admin-chat log mirror. With a zero chat id the
// logger only writes to the console.
func InitLogger(s Sender, chatID int64) {
	sender = s
	adminChatID = chatID
	if adminChatID == 0 {
		log.Println("Warning: bot.adminChatId is not set. Logging to the admin chat is disabled.")
	}
}

// Log writes a log message to the console and mirrors it to the admin chat.
func Log(level, module, operation, details string) {
	log.Printf("[%s] Module: %s, Operation: %s, Details: %s", level, module, operation, details)

	if sender == nil || adminChatID == 0 {
		return
	}

	var icon string
	switch level {
	case "WARN":
		icon = "⚠️"
	case "ERROR":
		icon = "🔴"
	default:
		icon = "ℹ️"
	}

	text := fmt.Sprintf("%s %s | %s / %s\n%s", icon, level, module, operation, details)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := sender.SendMessage(ctx, adminChatID, 0, text); err != nil {
		log.Printf("Error sending log message to admin chat: %v", err)
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}
