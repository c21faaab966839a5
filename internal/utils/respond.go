package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

type errorBody struct {
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// WriteMessage answers with {"message": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Message: msg})
}

// WriteError maps err onto its HTTP status. Internal errors are logged with
// their origin and answered with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		WriteMessage(w, status, "Something went wrong")
		return
	}

	msg := err.Error()
	if appErr, ok := AsAppError(err); ok {
		msg = appErr.Message
	}
	WriteMessage(w, status, msg)
}
