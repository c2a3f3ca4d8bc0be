package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tuanvumaihuynh/planner-shop/internal/http/apierr"
)

// messageResponse carries a human readable outcome.
type messageResponse struct {
	Message string `json:"message"`
}

type responder struct {
	logger *slog.Logger
}

func (rs responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		rs.logger.WarnContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	rs.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	rs.writeJSON(w, r, res.StatusCode, res)
}
