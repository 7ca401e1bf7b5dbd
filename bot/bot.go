// Package bot owns the application lifecycle: configuration, the database,
// the Telegram gateway, the registration engine and the update loop.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ride-bot/config"
	"ride-bot/database"
	"ride-bot/gateway"
	"ride-bot/ledger"
	"ride-bot/presentation"
	"ride-bot/registration"
	"ride-bot/utils"
)

// UpdateHandler processes one inbound update.
type UpdateHandler func(ctx context.Context, update tgbotapi.Update)

// Bot encapsulates the bot's state.
type Bot struct {
	Config   *config.Config
	DB       *sql.DB
	Gateway  *gateway.Telegram
	Votes    *ledger.Ledger
	Engine   *registration.Engine
	Renderer *presentation.Renderer
	Filter   *utils.MessageFilter

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBot creates and initializes a new Bot instance.
func NewBot() (*Bot, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gw, err := gateway.NewTelegram(cfg.BotToken, cfg.RequestTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}
	utils.InitLogger(gw, cfg.AdminChatID)

	renderer := presentation.NewRenderer(cfg.Language, cfg.ShowChangedMindStats)
	votes := ledger.New(db, cfg.VoteCooldown)
	engine := registration.New(db, gw, renderer, votes, registration.Options{
		PreferredMode:     cfg.PreferredMode,
		DiscussionGroupID: cfg.DiscussionGroupID,
	})

	return &Bot{
		Config:   cfg,
		DB:       db,
		Gateway:  gw,
		Votes:    votes,
		Engine:   engine,
		Renderer: renderer,
		Filter:   utils.NewMessageFilter(cfg.Filter, cfg.Hashtags),
	}, nil
}

// RegisterCommands publishes the command menu. A failure is logged, not
// fatal: the bot works without a menu.
func (b *Bot) RegisterCommands(commands []tgbotapi.BotCommand) {
	if len(commands) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.Gateway.SetCommands(ctx, commands); err != nil {
		log.Printf("Cannot register command menu: %v", err)
	}
}

// Start registers handlers, starts the scheduler and begins consuming
// updates. Each update is handled in its own goroutine; the engine and the
// store serialize where it matters.
func (b *Bot) Start(registerHandlers func(*Bot) UpdateHandler) error {
	handle := registerHandlers(b)

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	startScheduler(ctx, b)

	updates := b.Gateway.Updates()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for update := range updates {
			update := update
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				handle(ctx, update)
			}()
		}
	}()

	fmt.Printf("Bot is now running as @%s. Press CTRL-C to exit.\n", b.Gateway.SelfName())
	return nil
}

// Stop gracefully shuts the bot down: stop polling, drain in-flight
// handlers, then close the database.
func (b *Bot) Stop() {
	stopScheduler()
	b.Gateway.StopUpdates()
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	if b.DB != nil {
		b.DB.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}

// Run is the main entry point for the bot application.
func Run(registerHandlers func(*Bot) UpdateHandler, commands []tgbotapi.BotCommand) {
	bot, err := NewBot()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	bot.RegisterCommands(commands)

	if err := bot.Start(registerHandlers); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
}
