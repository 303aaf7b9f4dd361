package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API error body for failures raised before a request
// reaches its handler.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":   status,
		"detail": detail,
	})
}
