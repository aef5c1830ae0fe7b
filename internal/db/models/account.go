package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Account links a chat identity to a provisioned mailbox.
// Token is only ever written together with Email.
type Account struct {
	ChatID    int64     `gorm:"column:chat_id;primaryKey;autoIncrement:false" json:"chat_id"`
	Email     string    `gorm:"column:email" json:"email"`
	Token     string    `gorm:"column:token" json:"-"`
	Inbox     Inbox     `gorm:"column:inbox;type:text;not null;default:'[]'" json:"inbox"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the on-disk layout of existing emailgenx.db files.
func (Account) TableName() string {
	return "users"
}

// MessageSummary is the sender/subject pair shown to chat users.
type MessageSummary struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
}

// Inbox is an advisory snapshot of the last fetched message list, stored as JSON text.
type Inbox []MessageSummary

// Value implements driver.Valuer. A nil inbox is stored as an empty list.
func (i Inbox) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]MessageSummary(i))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (i *Inbox) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*i = Inbox{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported inbox column type %T", src)
	}
	if len(data) == 0 {
		*i = Inbox{}
		return nil
	}
	var msgs []MessageSummary
	if err := json.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("decode inbox snapshot: %w", err)
	}
	if msgs == nil {
		msgs = []MessageSummary{}
	}
	*i = msgs
	return nil
}
