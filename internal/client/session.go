package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ayush/devconnector/internal/models"
)

// Session sends every request with its own token in x-auth-token.
type Session struct {
	c     *Client
	token string
}

func (s *Session) Token() string { return s.token }

func (s *Session) do(ctx context.Context, method, path string, in, out any) error {
	return s.c.do(ctx, s.token, method, path, in, out)
}

func (s *Session) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.do(ctx, http.MethodGet, "/api/auth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) MyProfile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := s.do(ctx, http.MethodGet, "/api/profile/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SaveProfile(ctx context.Context, req models.ProfileRequest) (*models.Profile, error) {
	var out models.Profile
	if err := s.do(ctx, http.MethodPost, "/api/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AddExperience(ctx context.Context, req models.ExperienceRequest) (*models.Profile, error) {
	var out models.Profile
	if err := s.do(ctx, http.MethodPut, "/api/profile/experience", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RemoveExperience(ctx context.Context, id string) (*models.Profile, error) {
	var out models.Profile
	if err := s.do(ctx, http.MethodDelete, "/api/profile/experience/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AddEducation(ctx context.Context, req models.EducationRequest) (*models.Profile, error) {
	var out models.Profile
	if err := s.do(ctx, http.MethodPut, "/api/profile/education", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RemoveEducation(ctx context.Context, id string) (*models.Profile, error) {
	var out models.Profile
	if err := s.do(ctx, http.MethodDelete, "/api/profile/education/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes the user with their profile and posts. The session
// is unusable afterwards.
func (s *Session) DeleteAccount(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, "/api/profile", nil, nil)
}

func (s *Session) CreatePost(ctx context.Context, text string) (*models.Post, error) {
	var out models.Post
	if err := s.do(ctx, http.MethodPost, "/api/posts", models.TextRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Posts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	err := s.do(ctx, http.MethodGet, "/api/posts", nil, &out)
	return out, err
}

func (s *Session) Post(ctx context.Context, id string) (*models.Post, error) {
	var out models.Post
	if err := s.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeletePost(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

func (s *Session) Like(ctx context.Context, postID string) ([]models.Like, error) {
	var out []models.Like
	err := s.do(ctx, http.MethodPut, "/api/posts/like/"+url.PathEscape(postID), nil, &out)
	return out, err
}

func (s *Session) Unlike(ctx context.Context, postID string) ([]models.Like, error) {
	var out []models.Like
	err := s.do(ctx, http.MethodPut, "/api/posts/unlike/"+url.PathEscape(postID), nil, &out)
	return out, err
}

func (s *Session) Comment(ctx context.Context, postID, text string) ([]models.Comment, error) {
	var out []models.Comment
	err := s.do(ctx, http.MethodPost, "/api/posts/comment/"+url.PathEscape(postID), models.TextRequest{Text: text}, &out)
	return out, err
}

func (s *Session) RemoveComment(ctx context.Context, postID, commentID string) ([]models.Comment, error) {
	var out []models.Comment
	path := "/api/posts/comment/" + url.PathEscape(postID) + "/" + url.PathEscape(commentID)
	err := s.do(ctx, http.MethodDelete, path, nil, &out)
	return out, err
}
