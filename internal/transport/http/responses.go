package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "huddle/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler produces the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(pkgerrors.CodeInternal)
	msg := "internal error"

	var app *pkgerrors.AppError
	if errors.As(err, &app) {
		status = pkgerrors.ToHTTPStatus(app.Code)
		code = string(app.Code)
		msg = app.Message
	}
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": msg,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pkgerrors.InvalidArg("invalid request body")
	}
	return nil
}
