package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/middleware"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/webutil"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register creates a new user and returns a token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	var req models.RegisterRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}
	token, err := h.svc.Register(r.Context(), req)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, models.TokenResponse{Token: token})
	return nil
}

// Login authenticates a user and returns a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var req models.LoginRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}
	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, models.TokenResponse{Token: token})
	return nil
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	user, err := h.svc.CurrentUser(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, user)
	return nil
}

// UploadAvatar accepts a multipart "avatar" file.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarBytes+64<<10)
	file, _, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation(apperr.FieldError{Param: "avatar", Msg: "Avatar must be 2MB or smaller"})
		}
		return apperr.Validation(apperr.FieldError{Param: "avatar", Msg: "Avatar image is required"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarBytes+1))
	if err != nil {
		return apperr.Validation(apperr.FieldError{Param: "avatar", Msg: "Avatar must be 2MB or smaller"})
	}

	user, err := h.svc.SetAvatar(r.Context(), middleware.UserID(r.Context()), data)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, user)
	return nil
}

// Avatar streams a user's uploaded avatar.
func (h *Handler) Avatar(w http.ResponseWriter, r *http.Request) error {
	rc, contentType, size, err := h.svc.Avatar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	defer rc.Close()

	w.Header().Set(webutil.HeaderContentType, contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := io.Copy(w, rc); err != nil {
		slog.WarnContext(r.Context(), "avatar stream interrupted", "error", err)
	}
	return nil
}
