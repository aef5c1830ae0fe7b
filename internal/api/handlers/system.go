package handlers

import (
	"net/http"

	"github.com/emailgenx/emailgenx/internal/db"
	"github.com/emailgenx/emailgenx/internal/version"
	"gorm.io/gorm"
)

// HealthHandler reports liveness and the number of stored accounts.
// GET /healthz
func HealthHandler(accounts AccountReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := accounts.Count(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "accounts": n})
	}
}

// VersionHandler returns build information.
// GET /api/version
func VersionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    version.Version,
			"commit":     version.Commit,
			"build_time": version.BuildTime,
		})
	}
}

// GetAPIKeyHandler returns the current API key.
// GET /admin/apikey
func GetAPIKeyHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"api_key": db.GetAPIKey(database)})
	}
}

// RegenerateAPIKeyHandler rotates the API key.
// POST /admin/apikey/regenerate
func RegenerateAPIKeyHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := db.RegenerateAPIKey(database)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to regenerate API key")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"api_key": key})
	}
}
