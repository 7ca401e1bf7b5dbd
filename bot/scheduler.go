package bot

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

var c *cron.Cron

// startScheduler starts the cron jobs: an hourly re-render of recent cards
// (self-heal for missed updates) and a periodic sweep of stale album
// markers.
func startScheduler(ctx context.Context, b *Bot) {
	log.Println("Initializing scheduler...")
	c = cron.New()

	_, err := c.AddFunc("@hourly", func() {
		log.Println("Refreshing recent registration cards...")
		b.Engine.RefreshRecent(ctx, b.Config.RidesChannelID, time.Now().Add(-24*time.Hour))
	})
	if err != nil {
		log.Fatalf("Could not set up card refresh job: %v", err)
	}

	_, err = c.AddFunc("@every 5m", func() {
		if removed := b.Engine.SweepAlbums(); removed > 0 {
			log.Printf("Dropped %d stale album markers", removed)
		}
	})
	if err != nil {
		log.Fatalf("Could not set up album sweep job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started.")
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}
