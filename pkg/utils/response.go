// Package utils 提供HTTP处理器共用的响应小工具。
package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// RespondJSON writes payload as a JSON response. Encoding failures are only
// logged: the status line is already on the wire at that point.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[http] failed to encode %T response: %v", payload, err)
	}
}

// RespondError writes the error envelope the practice endpoint uses
// throughout: {"error": message}.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
