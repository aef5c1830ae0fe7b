// Package mailbox provisions temporary mailboxes for chat identities and reads their inboxes.
package mailbox

import (
	"context"
	"fmt"
	"log"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/emailgenx/emailgenx/internal/events"
	"github.com/emailgenx/emailgenx/internal/logging"
	"github.com/emailgenx/emailgenx/internal/mailtm"
	"github.com/emailgenx/emailgenx/internal/util"
)

// Provider is the subset of the temporary-mail API the service uses.
type Provider interface {
	ListDomains(ctx context.Context) ([]mailtm.Domain, error)
	CreateAccount(ctx context.Context, creds mailtm.Credentials) (*mailtm.Account, error)
	RequestToken(ctx context.Context, creds mailtm.Credentials) (*mailtm.Token, error)
	ListMessages(ctx context.Context, accessToken string) ([]mailtm.Message, error)
}

// Store persists account records keyed by chat identity.
type Store interface {
	GetEmail(ctx context.Context, chatID int64) (string, error)
	GetToken(ctx context.Context, chatID int64) (string, error)
	Upsert(ctx context.Context, chatID int64, email, token string, inbox models.Inbox) error
	UpdateInboxCache(ctx context.Context, chatID int64, inbox models.Inbox) error
	Delete(ctx context.Context, chatID int64) error
}

// Service runs the account lifecycle: provision, read inbox, delete.
type Service struct {
	provider  Provider
	store     Store
	publisher events.Publisher
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator overrides the short id source used for new addresses.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewService wires a provider client and a store.
func NewService(provider Provider, store Store, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		store:     store,
		publisher: events.Nop{},
		newID: func() string {
			return util.GenerateShortID(util.DefaultShortIDLength)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LinkedEmail returns the address stored for chatID, or ErrNotProvisioned.
func (s *Service) LinkedEmail(ctx context.Context, chatID int64) (string, error) {
	email, err := s.store.GetEmail(ctx, chatID)
	if err != nil {
		log.Printf("%s⚠️ Store error reading email for chat %d: %v", logging.Prefix(ctx), chatID, err)
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}
	if email == "" {
		return "", ErrNotProvisioned
	}
	return email, nil
}

// Delete removes the record for chatID. Missing records are not an error.
func (s *Service) Delete(ctx context.Context, chatID int64) error {
	if err := s.store.Delete(ctx, chatID); err != nil {
		log.Printf("%s⚠️ Store error deleting chat %d: %v", logging.Prefix(ctx), chatID, err)
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	log.Printf("%s🗑️ Deleted mailbox record for chat %d", logging.Prefix(ctx), chatID)
	s.publish(ctx, events.TypeAccountDeleted, events.AccountData{ChatID: chatID})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, data events.AccountData) {
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		log.Printf("%s⚠️ Failed to publish %s for chat %d: %v", logging.Prefix(ctx), eventType, data.ChatID, err)
	}
}
