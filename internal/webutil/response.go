package webutil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ayush/devconnector/internal/apperr"
)

const (
	HeaderContentType = "Content-Type"
	HeaderAuthToken   = "x-auth-token"

	ContentTypeJSONUTF8      = "application/json; charset=utf-8"
	ContentTypeTextPlainUTF8 = "text/plain; charset=utf-8"

	msgServerError = "Server Error"

	// maxBodyBytes caps JSON request bodies.
	maxBodyBytes = 1 << 20
)

// RespondWithJSON writes payload as JSON with the given status.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		w.Header().Set(HeaderContentType, ContentTypeTextPlainUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(msgServerError))
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// DecodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched so required-field validation reports the missing fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation(apperr.FieldError{Msg: "Invalid request body"})
	}
	return nil
}
