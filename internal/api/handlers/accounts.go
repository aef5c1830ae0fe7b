package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/emailgenx/emailgenx/internal/logging"
	"github.com/emailgenx/emailgenx/internal/mailbox"
)

// ProvisionHandler creates a mailbox for the chat identity.
// POST /api/accounts/{chatID}
func ProvisionHandler(mailboxes Mailboxes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := chatIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid chat ID")
			return
		}

		email, err := mailboxes.Provision(r.Context(), chatID)
		if err != nil {
			log.Printf("%s❌ Provisioning via API failed for chat %d: %v", logging.Prefix(r.Context()), chatID, err)
			writeError(w, http.StatusBadGateway, "Failed to generate email. Please try again later.")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"chat_id": chatID,
			"email":   email,
		})
	}
}

// GetAccountHandler returns the stored record, including the cached inbox snapshot.
// GET /api/accounts/{chatID}
func GetAccountHandler(accounts AccountReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := chatIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid chat ID")
			return
		}

		account, err := accounts.Get(r.Context(), chatID)
		if err != nil {
			log.Printf("%s⚠️ Reading account %d failed: %v", logging.Prefix(r.Context()), chatID, err)
			writeError(w, http.StatusInternalServerError, "Failed to read account")
			return
		}
		if account == nil {
			writeError(w, http.StatusNotFound, "No email linked")
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

// InboxHandler reads the live inbox from the provider.
// GET /api/accounts/{chatID}/inbox
func InboxHandler(mailboxes Mailboxes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := chatIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid chat ID")
			return
		}

		msgs, err := mailboxes.FetchInbox(r.Context(), chatID)
		if errors.Is(err, mailbox.ErrNotProvisioned) {
			writeError(w, http.StatusNotFound, "No email linked")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch inbox")
			return
		}
		if msgs == nil {
			msgs = []models.MessageSummary{}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"messages": msgs,
			"count":    len(msgs),
		})
	}
}

// DeleteAccountHandler removes the record. It succeeds whether or not one existed.
// DELETE /api/accounts/{chatID}
func DeleteAccountHandler(mailboxes Mailboxes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := chatIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid chat ID")
			return
		}

		if err := mailboxes.Delete(r.Context(), chatID); err != nil {
			log.Printf("%s⚠️ Delete via API failed for chat %d: %v", logging.Prefix(r.Context()), chatID, err)
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
