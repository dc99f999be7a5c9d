// Package whatsapp adapts the command core to WhatsApp Web via whatsmeow.
// It owns the connection lifecycle (QR / pairing-code login, reconnects are
// handled by the library) and implements the Messenger, Gatekeeper and
// GroupProvider collaborator interfaces the core depends on.
package whatsapp

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"

	"github.com/keshon/wabot/internal/command"
	"github.com/keshon/wabot/internal/config"
)

// Bot wraps a whatsmeow client and forwards inbound messages to Handler.
type Bot struct {
	cfg    *config.Config
	client *whatsmeow.Client

	// Handler receives each inbound message. Set before Run.
	Handler func(ctx context.Context, msg *command.Incoming)
}

// NewBot opens the session store and builds the client. The account is not
// connected until Run.
func NewBot(ctx context.Context, cfg *config.Config) (*Bot, error) {
	dbLog := waLog.Stdout("Database", "ERROR", true)
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", cfg.SessionPath), dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	client := whatsmeow.NewClient(device, waLog.Stdout("Client", "ERROR", true))
	return &Bot{cfg: cfg, client: client}, nil
}

// Run connects to WhatsApp, performing first-time login via QR code (or
// pairing code when PAIR_PHONE is set), then blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.client.AddEventHandler(b.handleEvent)

	if b.client.Store.ID == nil {
		if err := b.login(ctx); err != nil {
			return err
		}
	} else {
		if err := b.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
	}

	<-ctx.Done()
	b.client.Disconnect()
	return nil
}

func (b *Bot) login(ctx context.Context) error {
	qrChan, err := b.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := b.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	if b.cfg.PairPhone != "" {
		code, err := b.client.PairPhone(ctx, b.cfg.PairPhone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
		if err != nil {
			return fmt.Errorf("failed to request pairing code: %w", err)
		}
		log.Printf("[INFO] Pairing code: %s", code)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			if b.cfg.PairPhone == "" {
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				log.Println("[INFO] Scan the QR code with WhatsApp")
			}
		case "success":
			log.Println("[DONE] Logged in")
		default:
			log.Printf("[INFO] Login event: %s", evt.Event)
		}
	}
	return nil
}
