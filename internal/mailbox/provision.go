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

const (
	localPartPrefix = "user_"
	passwordPrefix  = "secure_"
)

// ComposeCredentials builds the address and password for a new mailbox from one short id.
func ComposeCredentials(shortID, domain string) mailtm.Credentials {
	return mailtm.Credentials{
		Address:  localPartPrefix + shortID + "@" + domain,
		Password: passwordPrefix + shortID,
	}
}

// Provision creates a new mailbox for chatID and stores its credentials,
// replacing any previous record. Nothing is written unless every remote step succeeds.
func (s *Service) Provision(ctx context.Context, chatID int64) (string, error) {
	domains, err := s.provider.ListDomains(ctx)
	if err != nil {
		log.Printf("%s❌ Listing domains failed for chat %d: %v", logging.Prefix(ctx), chatID, err)
		return "", fmt.Errorf("%w: %v", ErrNoDomainsAvailable, err)
	}
	domain, ok := firstActiveDomain(domains)
	if !ok {
		log.Printf("%s❌ No domains available for chat %d", logging.Prefix(ctx), chatID)
		return "", ErrNoDomainsAvailable
	}

	creds := ComposeCredentials(s.newID(), domain)

	if _, err := s.provider.CreateAccount(ctx, creds); err != nil {
		log.Printf("%s❌ Account creation rejected for %s: %v", logging.Prefix(ctx), creds.Address, err)
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	token, err := s.provider.RequestToken(ctx, creds)
	if err != nil {
		log.Printf("%s❌ Token exchange failed for %s: %v", logging.Prefix(ctx), creds.Address, err)
		return "", fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}

	if err := s.store.Upsert(ctx, chatID, creds.Address, token.Token, models.Inbox{}); err != nil {
		log.Printf("%s❌ Storing account for chat %d failed: %v", logging.Prefix(ctx), chatID, err)
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}

	log.Printf("%s✅ Provisioned %s for chat %d (token: %s)", logging.Prefix(ctx), creds.Address, chatID, util.MaskToken(token.Token))
	s.publish(ctx, events.TypeAccountProvisioned, events.AccountData{ChatID: chatID, Email: creds.Address})
	return creds.Address, nil
}

// firstActiveDomain returns the first usable domain in provider order.
func firstActiveDomain(domains []mailtm.Domain) (string, bool) {
	for _, d := range domains {
		if d.Domain != "" && d.Active() {
			return d.Domain, true
		}
	}
	return "", false
}
