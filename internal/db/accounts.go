package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountStore persists one Account per chat identity.
// Every method is a single statement keyed by chat_id.
type AccountStore struct {
	db *gorm.DB
}

// NewAccountStore wraps an initialized database handle.
func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

// Get returns the full record, or nil when chatID has none.
func (s *AccountStore) Get(ctx context.Context, chatID int64) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", chatID, err)
	}
	return &account, nil
}

// GetEmail returns the provisioned address, or "" when none exists.
func (s *AccountStore) GetEmail(ctx context.Context, chatID int64) (string, error) {
	return s.column(ctx, chatID, "email")
}

// GetToken returns the provider access token, or "" when none exists.
func (s *AccountStore) GetToken(ctx context.Context, chatID int64) (string, error) {
	return s.column(ctx, chatID, "token")
}

func (s *AccountStore) column(ctx context.Context, chatID int64, name string) (string, error) {
	var values []string
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("chat_id = ?", chatID).
		Limit(1).
		Pluck(name, &values).Error
	if err != nil {
		return "", fmt.Errorf("get %s for %d: %w", name, chatID, err)
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

// Upsert writes email, token and inbox snapshot for chatID, replacing any previous record.
func (s *AccountStore) Upsert(ctx context.Context, chatID int64, email, token string, inbox models.Inbox) error {
	if inbox == nil {
		inbox = models.Inbox{}
	}
	account := models.Account{
		ChatID: chatID,
		Email:  email,
		Token:  token,
		Inbox:  inbox,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "token", "inbox", "updated_at"}),
	}).Create(&account).Error
	if err != nil {
		return fmt.Errorf("upsert account %d: %w", chatID, err)
	}
	return nil
}

// UpdateInboxCache replaces the advisory inbox snapshot. It never creates a record,
// so a snapshot write racing a Delete cannot bring the record back.
func (s *AccountStore) UpdateInboxCache(ctx context.Context, chatID int64, inbox models.Inbox) error {
	if inbox == nil {
		inbox = models.Inbox{}
	}
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("chat_id = ?", chatID).
		Updates(map[string]interface{}{
			"inbox":      inbox,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("update inbox cache %d: %w", chatID, err)
	}
	return nil
}

// Delete removes the record for chatID. Deleting a missing record is not an error.
func (s *AccountStore) Delete(ctx context.Context, chatID int64) error {
	err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&models.Account{}).Error
	if err != nil {
		return fmt.Errorf("delete account %d: %w", chatID, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *AccountStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}
