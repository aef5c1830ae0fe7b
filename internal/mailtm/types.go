package mailtm

import (
	"fmt"
	"time"
)

// Domain is an address domain offered by the provider.
type Domain struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	IsActive  *bool  `json:"isActive,omitempty"`
	IsPrivate bool   `json:"isPrivate"`
}

// Active reports whether the domain accepts new accounts.
// Providers that omit the flag are treated as active.
func (d Domain) Active() bool {
	return d.IsActive == nil || *d.IsActive
}

// Credentials identify a mailbox on the provider.
type Credentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// Account is the descriptor returned by account creation.
type Account struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Quota     int64     `json:"quota"`
	Used      int64     `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

// Token is the bearer credential returned by the token exchange.
type Token struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// Address is a sender or recipient.
type Address struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Message is one entry of the message listing.
type Message struct {
	ID        string    `json:"id"`
	From      Address   `json:"from"`
	To        []Address `json:"to"`
	Subject   string    `json:"subject"`
	Intro     string    `json:"intro"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"createdAt"`
}

// collection is the JSON-LD list wrapper used by the provider.
type collection[T any] struct {
	Members    []T `json:"hydra:member"`
	TotalItems int `json:"hydra:totalItems"`
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mailtm %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}
