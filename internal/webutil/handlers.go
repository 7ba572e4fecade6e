package webutil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayush/devconnector/internal/apperr"
)

// AppHandler is a handler that returns an error instead of writing one.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to http.HandlerFunc. A returned error is
// written with WriteError.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler(w, r); err != nil {
			WriteError(w, r, err)
		}
	}
}

// errorBody is the {"msg": ...} shape used for most client errors.
type errorBody struct {
	Msg string `json:"msg"`
}

// fieldErrorsBody is the {"errors": [...]} shape used for bad input.
type fieldErrorsBody struct {
	Errors []apperr.FieldError `json:"errors"`
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidCredentials,
		apperr.KindAlreadyLiked, apperr.KindNotLiked:
		return http.StatusBadRequest
	case apperr.KindNoToken, apperr.KindInvalidToken, apperr.KindTokenExpired:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound, apperr.KindUpstreamUnavailable:
		return http.StatusNotFound
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError translates err into a response. Domain errors carry their
// public message; anything else is logged and answered with a bare 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "unhandled internal error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		w.Header().Set(HeaderContentType, ContentTypeTextPlainUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(msgServerError))
		return
	}

	status := StatusFor(appErr.Kind)
	attrs := []any{
		"kind", appErr.Kind.String(),
		"status", status,
		"msg", appErr.Msg,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if cause := errors.Unwrap(appErr); cause != nil {
		attrs = append(attrs, "cause", cause)
	}
	slog.WarnContext(r.Context(), "client error response", attrs...)

	switch appErr.Kind {
	case apperr.KindValidation, apperr.KindInvalidCredentials:
		fields := appErr.Fields
		if len(fields) == 0 {
			fields = []apperr.FieldError{{Msg: appErr.Msg}}
		}
		RespondWithJSON(w, status, fieldErrorsBody{Errors: fields})
	default:
		RespondWithJSON(w, status, errorBody{Msg: appErr.Msg})
	}
}
