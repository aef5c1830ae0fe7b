package mailbox

import (
	"context"
	"log"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/emailgenx/emailgenx/internal/logging"
)

// FetchInbox reads the current message list for chatID from the provider.
// It returns ErrNotProvisioned when no token is stored. Provider failures are
// logged and reported as an empty inbox.
func (s *Service) FetchInbox(ctx context.Context, chatID int64) ([]models.MessageSummary, error) {
	token, err := s.store.GetToken(ctx, chatID)
	if err != nil {
		log.Printf("%s⚠️ Store error reading token for chat %d: %v", logging.Prefix(ctx), chatID, err)
		return nil, ErrNotProvisioned
	}
	if token == "" {
		return nil, ErrNotProvisioned
	}

	messages, err := s.provider.ListMessages(ctx, token)
	if err != nil {
		log.Printf("%s⚠️ Fetching inbox for chat %d failed: %v", logging.Prefix(ctx), chatID, err)
		return []models.MessageSummary{}, nil
	}

	summaries := make([]models.MessageSummary, 0, len(messages))
	for _, m := range messages {
		summaries = append(summaries, models.MessageSummary{
			From:    m.From.Address,
			Subject: m.Subject,
		})
	}

	// The snapshot is advisory; failing to write it does not affect the reply.
	if err := s.store.UpdateInboxCache(ctx, chatID, summaries); err != nil {
		log.Printf("%s⚠️ Updating inbox snapshot for chat %d failed: %v", logging.Prefix(ctx), chatID, err)
	}
	return summaries, nil
}
