package bot

import (
	"context"
	"fmt"
	"log"

	"github.com/emailgenx/emailgenx/internal/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const pollTimeoutSeconds = 60

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Listener long-polls Telegram and answers commands one at a time.
type Listener struct {
	api        *tgbotapi.BotAPI
	dispatcher *Dispatcher
}

// NewListener authenticates against the Bot API with token.
func NewListener(token string, dispatcher *Dispatcher) (*Listener, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	log.Printf("🤖 Authorized on Telegram as @%s", api.Self.UserName)
	return &Listener{api: api, dispatcher: dispatcher}, nil
}

// Run polls until ctx is cancelled. Each update is fully handled before the next.
func (l *Listener) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := l.api.GetUpdatesChan(u)
	defer l.api.StopReceivingUpdates()

	log.Println("🔄 Telegram polling started")
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			handleUpdate(ctx, l.api, l.dispatcher, update)
		}
	}
}

func handleUpdate(ctx context.Context, s sender, d *Dispatcher, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}

	ctx = logging.EnsureRequestID(ctx)
	chatID := msg.Chat.ID
	command := msg.Command()
	log.Printf("%s📩 /%s from chat %d", logging.Prefix(ctx), command, chatID)

	reply := tgbotapi.NewMessage(chatID, d.Handle(ctx, chatID, command))
	reply.ReplyToMessageID = msg.MessageID
	if _, err := s.Send(reply); err != nil {
		log.Printf("%s⚠️ Failed to reply to chat %d: %v", logging.Prefix(ctx), chatID, err)
	}
}
