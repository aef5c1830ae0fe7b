package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/go-chi/chi/v5"
)

// Mailboxes is the account workflow exposed over HTTP.
type Mailboxes interface {
	Provision(ctx context.Context, chatID int64) (string, error)
	FetchInbox(ctx context.Context, chatID int64) ([]models.MessageSummary, error)
	Delete(ctx context.Context, chatID int64) error
}

// AccountReader reads stored account records.
type AccountReader interface {
	Get(ctx context.Context, chatID int64) (*models.Account, error)
	Count(ctx context.Context) (int64, error)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// chatIDParam parses the {chatID} URL parameter. Telegram group ids are negative.
func chatIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
