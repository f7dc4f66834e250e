package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with a specific status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the error envelope
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, ErrorResponse{
		Error:      message,
		StatusCode: statusCode,
	})
}
