package main

import (
	"context"
	"fmt"
	"log"

	"github.com/emailgenx/emailgenx/internal/api"
	"github.com/emailgenx/emailgenx/internal/bot"
	"github.com/emailgenx/emailgenx/internal/config"
	"github.com/emailgenx/emailgenx/internal/db"
	"github.com/emailgenx/emailgenx/internal/events"
	"github.com/emailgenx/emailgenx/internal/mailbox"
	"github.com/emailgenx/emailgenx/internal/mailtm"
	"github.com/emailgenx/emailgenx/internal/monitor"
	"golang.org/x/sync/errgroup"
)

// runServices starts the requested tasks and returns once all of them have ended.
// A task ending does not stop the others.
func runServices(ctx context.Context, cfg *config.Config, withBot, withAPI bool) error {
	if withBot {
		if err := cfg.ValidateBot(); err != nil {
			return err
		}
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	store := db.NewAccountStore(database)

	publisher := newPublisher(cfg.AMQP)
	defer publisher.Close()

	client := mailtm.NewClient(cfg.MailTM.BaseURL, cfg.MailTM.Timeout)
	svc := mailbox.NewService(client, store, mailbox.WithPublisher(publisher))
	log.Printf("📬 Using mail provider %s", client.BaseURL())

	activity := monitor.New(database)
	defer activity.Wait()

	var g errgroup.Group

	if withBot {
		listener, err := bot.NewListener(cfg.Telegram.Token, bot.NewDispatcher(svc, bot.WithRecorder(activity)))
		if err != nil {
			return err
		}
		g.Go(func() error {
			return listener.Run(ctx)
		})
	}

	if withAPI {
		router := api.NewRouter(api.Deps{
			DB:            database,
			Mailboxes:     svc,
			Accounts:      store,
			Activity:      activity,
			AdminPassword: cfg.Server.AdminPassword,
		})
		server := api.NewServer(cfg.Addr(), router)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	return g.Wait()
}

// newPublisher returns an AMQP publisher when configured. Connection failures
// only disable event publishing.
func newPublisher(cfg config.AMQPConfig) events.Publisher {
	if cfg.URL == "" {
		return events.Nop{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		log.Printf("⚠️ Event publishing disabled: %v", err)
		return events.Nop{}
	}
	return publisher
}
