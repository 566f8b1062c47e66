package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// encodeFailedJSON is written when a response body cannot be marshaled.
const encodeFailedJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// OK sends a 200 OK response with JSON data.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response with JSON data.
func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, data)
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON marshals before writing the status so an encoding failure
// still produces a 500 instead of a truncated success.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailedJSON))
		return
	}

	w.WriteHeader(statusCode)
	body = append(body, '\n')
	if _, err := w.Write(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
