package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type apiError struct {
	Error string `json:"error"`
}

func errorBody(msg string) apiError {
	return apiError{Error: msg}
}

// writeJSON marshals v before touching the response, so an encoding failure
// still produces a well-formed 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("response encode failed", slog.String("error", err.Error()))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Debug("response write failed", slog.String("error", err.Error()))
	}
}
