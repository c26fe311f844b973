package web

// errors.go provides unified error responses for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, lang)
//  3. Error is mapped via core.MapError to a code, status and both messages
//  4. Technical error is logged with the request id for correlation
//  5. Client receives {success:false, error, error_ru, error_uz, code}

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/logging"
)

var (
	// errNoFile maps to IN008.
	errNoFile = errors.New("no file provided")

	// errFileTooLarge maps to IN009.
	errFileTooLarge = errors.New("file too large")
)

// ErrorResponse is the JSON body of every failed request. Error is the
// message in the request language.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	ErrorRU string `json:"error_ru"`
	ErrorUZ string `json:"error_uz"`
	Code    string `json:"code"`
}

// respondError maps err to a user message, logs the technical error and
// writes the JSON error body with the mapped status.
func respondError(w http.ResponseWriter, r *http.Request, err error, lang core.Language) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = fmt.Errorf("%w: limit %d bytes", errFileTooLarge, tooLarge.Limit)
	}

	msg := core.MapError(err)

	logger := logging.WithFields(r.Context(),
		"path", r.URL.Path,
		"method", r.Method,
		"status", msg.Status,
		"code", msg.Code,
		"user_message", core.FormatUserError(err, lang),
	)
	if msg.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Warn("request rejected", "error", err)
	}

	writeJSONStatus(w, msg.Status, ErrorResponse{
		Success: false,
		Error:   msg.Message(lang),
		ErrorRU: msg.MessageRU,
		ErrorUZ: msg.MessageUZ,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON with the given status. Encoding errors
// are only logged since the header is already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
