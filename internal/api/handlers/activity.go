package handlers

import (
	"net/http"
	"strconv"

	"github.com/emailgenx/emailgenx/internal/db/models"
)

// ActivityMonitor exposes recorded chat command activity.
type ActivityMonitor interface {
	Logs(limit int) []models.CommandLog
	Stats() models.CommandStats
	Clear() error
}

// ActivityHandler returns command totals and the most recent entries.
// GET /admin/activity?limit=N
func ActivityHandler(m ActivityMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"stats": m.Stats(),
			"logs":  m.Logs(limit),
		})
	}
}

// ClearActivityHandler drops all recorded activity.
// DELETE /admin/activity
func ClearActivityHandler(m ActivityMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Clear(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear activity")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
