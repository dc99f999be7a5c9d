// cmd/whatsapp/main.go
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/keshon/wabot/internal/command"
	"github.com/keshon/wabot/internal/commands"
	"github.com/keshon/wabot/internal/config"
	"github.com/keshon/wabot/internal/storage"
	v "github.com/keshon/wabot/internal/version"
	"github.com/keshon/wabot/internal/whatsapp"
	"github.com/keshon/wabot/pkg/jobmgr"
)

func main() {
	log.Printf("[INFO] Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	bot, err := whatsapp.NewBot(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	reg := command.NewRegistry()
	cooldowns := command.NewCooldowns()
	limits := command.NewRateLimits()
	perms := command.NewPermissions(cfg.Owners, bot)

	dispatcher := command.NewDispatcher(reg, cooldowns, limits, perms, store, bot, cfg.Prefixes)
	dispatcher.HandlerTimeout = cfg.HandlerTimeout
	bot.Handler = func(ctx context.Context, msg *command.Incoming) {
		dispatcher.Handle(ctx, msg)
	}

	commands.RegisterAll(reg, &commands.Deps{
		Store:     store,
		Registry:  reg,
		Cooldowns: cooldowns,
		Messenger: bot,
		Groups:    bot,
		Prefix:    cfg.Prefixes[0],
		BotName:   cfg.BotName,
		StartedAt: time.Now(),
	})

	jobs := jobmgr.NewManager(func(msg string) {
		log.Println("[JOB]", msg)
	})
	defer jobs.StopAll()
	if err := jobs.StartAsync("cooldown-sweep", func(ctx context.Context) error {
		return storage.RunCooldownSweeper(ctx, cooldowns)
	}); err != nil {
		log.Println("[ERR] Failed to start cooldown sweeper:", err)
	}
	if err := jobs.StartAsync("storage-cleanup", func(ctx context.Context) error {
		return storage.RunUserCleanup(ctx, store)
	}); err != nil {
		log.Println("[ERR] Failed to start storage cleanup:", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] WhatsApp bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Printf("[INFO] %s exited cleanly", v.AppName)
}
