// Package bot maps chat commands onto mailbox operations and relays replies over Telegram.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/emailgenx/emailgenx/internal/logging"
	"github.com/emailgenx/emailgenx/internal/mailbox"
)

const (
	welcomeText        = "Welcome to EmailGenX! Use /generate to create a temporary email address."
	generateFailedText = "Failed to generate email. Please try again later."
	emptyInboxText     = "Your inbox is empty or no email address is linked. Use /generate to create one."
	deletedText        = "Your temporary email address has been deleted."
	noEmailText        = "No email address is linked yet. Use /generate to create one."
	unknownCommandText = "Unknown command. Use /help to see what I can do."

	helpText = `💌 EmailGenX Commands:
/start – Start using EmailGenX.
/generate – Create a new temporary email.
/inbox – View your received emails.
/email – Show your current temporary email.
/delete – Remove the temporary email.
/help – Get detailed guidance on using the bot.`
)

// Mailboxes is the account workflow the dispatcher drives.
type Mailboxes interface {
	Provision(ctx context.Context, chatID int64) (string, error)
	FetchInbox(ctx context.Context, chatID int64) ([]models.MessageSummary, error)
	LinkedEmail(ctx context.Context, chatID int64) (string, error)
	Delete(ctx context.Context, chatID int64) error
}

// Recorder receives one entry per handled command.
type Recorder interface {
	Record(entry models.CommandLog)
}

// Dispatcher turns one inbound command into one reply. It keeps no session state.
type Dispatcher struct {
	mailboxes Mailboxes
	recorder  Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder reports every handled command to r.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

func NewDispatcher(m Mailboxes, opts ...Option) *Dispatcher {
	d := &Dispatcher{mailboxes: m}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle runs command for chatID and returns the reply text.
func (d *Dispatcher) Handle(ctx context.Context, chatID int64, command string) string {
	start := time.Now()
	name := ParseCommand(command)
	reply, ok := d.dispatch(ctx, chatID, name)

	if d.recorder != nil {
		d.recorder.Record(models.CommandLog{
			Timestamp:  start.UnixMilli(),
			RequestID:  logging.GetRequestID(ctx),
			ChatID:     chatID,
			Command:    name,
			Success:    ok,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}
	return reply
}

func (d *Dispatcher) dispatch(ctx context.Context, chatID int64, name string) (string, bool) {
	switch name {
	case "start":
		return welcomeText, true
	case "generate":
		email, err := d.mailboxes.Provision(ctx, chatID)
		if err != nil {
			return generateFailedText, false
		}
		return "Your temporary email address is: " + email + "\nUse it to receive messages here.", true
	case "inbox":
		msgs, err := d.mailboxes.FetchInbox(ctx, chatID)
		if err != nil || len(msgs) == 0 {
			return emptyInboxText, err == nil
		}
		return "Your Inbox:\n\n" + RenderInbox(msgs), true
	case "email":
		email, err := d.mailboxes.LinkedEmail(ctx, chatID)
		if errors.Is(err, mailbox.ErrNotProvisioned) || email == "" {
			return noEmailText, true
		}
		if err != nil {
			return generateFailedText, false
		}
		return "Your temporary email address is: " + email, true
	case "delete":
		// The reply does not depend on whether a record existed or the delete failed.
		err := d.mailboxes.Delete(ctx, chatID)
		return deletedText, err == nil
	case "help":
		return helpText, true
	default:
		return unknownCommandText, false
	}
}

// ParseCommand normalizes "/Generate@SomeBot extra" to "generate".
func ParseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

// RenderInbox formats summaries as "From: <sender>\nSubject: <subject>" blocks
// separated by blank lines.
func RenderInbox(msgs []models.MessageSummary) string {
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, "From: "+m.From+"\nSubject: "+m.Subject)
	}
	return strings.Join(blocks, "\n\n")
}
