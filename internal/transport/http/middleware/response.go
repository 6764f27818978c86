package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody matches the handler package's error envelope so middleware
// rejections (401, 429) look the same on the wire as handler errors.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
