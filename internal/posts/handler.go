package posts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devconnector/internal/middleware"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/webutil"
)

// Handler holds post HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	var req models.TextRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}
	post, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), req.Text)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, post)
	return nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, posts)
	return nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, post)
	return nil
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context())); err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, models.Message{Msg: "Post removed"})
	return nil
}

// Like responds with the post's likes after adding the caller's.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) error {
	likes, err := h.svc.Like(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, likes)
	return nil
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) error {
	likes, err := h.svc.Unlike(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, likes)
	return nil
}

// AddComment responds with the post's comments, newest first.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) error {
	var req models.TextRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}
	comments, err := h.svc.AddComment(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()), req.Text)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, comments)
	return nil
}

func (h *Handler) RemoveComment(w http.ResponseWriter, r *http.Request) error {
	comments, err := h.svc.RemoveComment(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"), middleware.UserID(r.Context()))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, comments)
	return nil
}
