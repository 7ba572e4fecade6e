package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/devconnector/internal/auth"
	"github.com/ayush/devconnector/internal/middleware"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/posts"
	"github.com/ayush/devconnector/internal/profile"
	"github.com/ayush/devconnector/internal/webutil"
)

// UserStore is every user operation the API needs, whichever backend
// holds users.
type UserStore interface {
	auth.UserStore
	profile.UserStore
}

// PostStore is every post operation the API needs.
type PostStore interface {
	posts.PostStore
	profile.PostStore
}

// Deps are the backends the router is built on. Avatars and RateCounter
// may be nil.
type Deps struct {
	Users       UserStore
	Profiles    profile.ProfileStore
	Posts       PostStore
	Avatars     auth.ObjectStore
	RateCounter middleware.Counter
	GitHub      profile.RepoFetcher
	Tokens      *auth.TokenService

	RateLimitPerMinute int
	CORSOrigins        []string
}

// NewRouter wires services and handlers onto a chi router.
func NewRouter(d Deps) http.Handler {
	authSvc := auth.NewService(d.Users, d.Tokens, d.Avatars)
	profileSvc := profile.NewService(d.Profiles, d.Users, d.Posts, d.Avatars, d.GitHub)
	postSvc := posts.NewService(d.Posts, d.Users)

	authHandler := auth.NewHandler(authSvc)
	profileHandler := profile.NewHandler(profileSvc)
	postHandler := posts.NewHandler(postSvc)

	requireAuth := middleware.RequireAuth(d.Tokens)
	credentialLimit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimit(d.RateCounter, scope, d.RateLimitPerMinute, time.Minute)
	}
	h := webutil.MakeHandler

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{webutil.HeaderContentType, webutil.HeaderAuthToken},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.With(credentialLimit("register")).Post("/", h(authHandler.Register))
		if authSvc.AvatarsEnabled() {
			r.With(requireAuth).Post("/avatar", h(authHandler.UploadAvatar))
			r.Get("/{id}/avatar", h(authHandler.Avatar))
		}
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(credentialLimit("login")).Post("/", h(authHandler.Login))
		r.With(requireAuth).Get("/", h(authHandler.Me))
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Get("/", h(profileHandler.List))
		r.Get("/user/{user_id}", h(profileHandler.ByUser))
		r.Get("/github/{username}", h(profileHandler.GitHubRepos))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", h(profileHandler.Me))
			r.Post("/", h(profileHandler.Upsert))
			r.Delete("/", h(profileHandler.Delete))
			r.Put("/experience", h(profileHandler.AddExperience))
			r.Delete("/experience/{exp_id}", h(profileHandler.RemoveExperience))
			r.Put("/education", h(profileHandler.AddEducation))
			r.Delete("/education/{edu_id}", h(profileHandler.RemoveEducation))
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h(postHandler.Create))
		r.Get("/", h(postHandler.List))
		r.Get("/{id}", h(postHandler.Get))
		r.Delete("/{id}", h(postHandler.Delete))
		r.Put("/like/{id}", h(postHandler.Like))
		r.Put("/unlike/{id}", h(postHandler.Unlike))
		r.Post("/comment/{id}", h(postHandler.AddComment))
		r.Delete("/comment/{id}/{comment_id}", h(postHandler.RemoveComment))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		webutil.RespondWithJSON(w, http.StatusNotFound, models.Message{Msg: "Not found"})
	})

	return r
}
