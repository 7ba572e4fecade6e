package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devconnector/internal/middleware"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/webutil"
)

// Handler holds profile HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Me returns the caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	p, err := h.svc.GetOwn(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, p)
	return nil
}

// Upsert creates or updates the caller's profile.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) error {
	var req models.ProfileRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}
	p, err := h.svc.UpsertOwn(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, p)
	return nil
}

// List returns all profiles.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	profiles, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, profiles)
	return nil
}

// ByUser returns the profile of the user in the path.
func (h *Handler) ByUser(w http.ResponseWriter, r *http.Request) error {
	p, err := h.svc.GetByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, p)
	return nil
}

// Delete removes the caller's account with its profile and posts.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.DeleteOwn(r.Context(), middleware.UserID(r.Context())); err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, models.Message{Msg: "User deleted"})
	return nil
}

func (h *Handler) AddExperience(w http.ResponseWriter, r *http.Request) error {
	var req models.ExperienceRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}
	p, err := h.svc.AddExperience(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) RemoveExperience(w http.ResponseWriter, r *http.Request) error {
	p, err := h.svc.RemoveExperience(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "exp_id"))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) AddEducation(w http.ResponseWriter, r *http.Request) error {
	var req models.EducationRequest
	if err := webutil.DecodeJSON(r, &req); err != nil {
		return err
	}
	p, err := h.svc.AddEducation(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) RemoveEducation(w http.ResponseWriter, r *http.Request) error {
	p, err := h.svc.RemoveEducation(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "edu_id"))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, p)
	return nil
}

// GitHubRepos proxies the user's public repositories.
func (h *Handler) GitHubRepos(w http.ResponseWriter, r *http.Request) error {
	repos, err := h.svc.Repos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, repos)
	return nil
}
