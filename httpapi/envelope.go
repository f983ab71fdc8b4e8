package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/smartmailhq/authkit/account"
)

// Response is the wire envelope for every endpoint.
type Response struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Data    any                  `json:"data,omitempty"`
	Errors  []account.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string, fields []account.FieldError) {
	writeJSON(w, status, Response{Success: false, Message: message, Errors: fields})
}
