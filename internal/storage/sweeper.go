package storage

import (
	"context"
	"log"
	"time"

	"github.com/keshon/wabot/internal/command"
)

// RunCooldownSweeper clears expired cooldown entries every hour until ctx is
// done. The tracker itself owns no timers; this is the external scheduler.
func RunCooldownSweeper(ctx context.Context, cooldowns *command.Cooldowns) error {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := cooldowns.Sweep(command.DefaultRetention); n > 0 {
				log.Printf("[INFO] Swept %d expired cooldown entries", n)
			}
		}
	}
}

// RunUserCleanup drops users inactive for over 30 days, once a day.
func RunUserCleanup(ctx context.Context, store *Storage) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			store.Cleanup(30 * 24 * time.Hour)
		}
	}
}
