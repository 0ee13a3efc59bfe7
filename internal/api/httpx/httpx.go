package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/rewear-backend/internal/apperr"
)

type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteAppError renders err through its apperr code. Untyped errors become
// INTERNAL_ERROR and only the public message reaches the client.
func WriteAppError(w http.ResponseWriter, log *slog.Logger, err error) {
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	var details any
	if meta.Exposed {
		if m := typed.Message(); m != "" {
			msg = m
		}
		details = typed.Details()
	}

	if log != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed", "code", typed.Code(), "err", err)
	}
	WriteError(w, meta.HTTPStatus, string(typed.Code()), msg, details)
}
