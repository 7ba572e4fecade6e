package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/auth"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/validator"
)

const (
	msgNoProfile       = "There is no profile for this user"
	msgProfileNotFound = "Profile not found"
)

// ProfileStore defines the interface for profile persistence. Lookups and
// filtered updates return (nil, nil) when nothing matched.
type ProfileStore interface {
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, userID string, f models.ProfileFields) (*models.Profile, error)
	PushExperience(ctx context.Context, userID string, e models.Experience) (*models.Profile, error)
	PushEducation(ctx context.Context, userID string, e models.Education) (*models.Profile, error)
	PullExperience(ctx context.Context, userID, entryID string) (*models.Profile, error)
	PullEducation(ctx context.Context, userID, entryID string) (*models.Profile, error)
	DeleteByUser(ctx context.Context, userID string) error
	Restore(ctx context.Context, p *models.Profile) error
}

// UserStore is the subset of user persistence profiles need.
type UserStore interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PostStore is the subset of post persistence the account cascade needs.
type PostStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Post, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Restore(ctx context.Context, posts []models.Post) error
}

// ObjectRemover deletes stored objects such as uploaded avatars.
type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
}

// RepoFetcher looks up a user's public repositories.
type RepoFetcher interface {
	FetchRepos(ctx context.Context, username string) (json.RawMessage, error)
}

// Service implements profile management and account deletion.
type Service struct {
	profiles ProfileStore
	users    UserStore
	posts    PostStore
	avatars  ObjectRemover
	github   RepoFetcher
}

// NewService builds the profile service. avatars may be nil.
func NewService(profiles ProfileStore, users UserStore, posts PostStore, avatars ObjectRemover, github RepoFetcher) *Service {
	return &Service{profiles: profiles, users: users, posts: posts, avatars: avatars, github: github}
}

// UpsertOwn creates or updates the caller's profile.
func (s *Service) UpsertOwn(ctx context.Context, userID string, req models.ProfileRequest) (*models.Profile, error) {
	var v validator.Checker
	v.Required("status", req.Status, "Status is required")
	skills := validator.SplitList(req.Skills)
	if len(skills) == 0 {
		v.Add("skills", "Skills is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	fields := models.ProfileFields{
		Company:        strings.TrimSpace(req.Company),
		Website:        strings.TrimSpace(req.Website),
		Location:       strings.TrimSpace(req.Location),
		Bio:            strings.TrimSpace(req.Bio),
		Status:         strings.TrimSpace(req.Status),
		GitHubUsername: strings.TrimSpace(req.GitHubUsername),
		Skills:         skills,
		Social: models.Social{
			YouTube:   strings.TrimSpace(req.YouTube),
			Twitter:   strings.TrimSpace(req.Twitter),
			Facebook:  strings.TrimSpace(req.Facebook),
			LinkedIn:  strings.TrimSpace(req.LinkedIn),
			Instagram: strings.TrimSpace(req.Instagram),
		},
	}

	p, err := s.profiles.Upsert(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	return s.joinOne(ctx, p)
}

// GetOwn returns the caller's profile.
func (s *Service) GetOwn(ctx context.Context, userID string) (*models.Profile, error) {
	return s.get(ctx, userID, msgNoProfile)
}

// GetByUser returns another user's profile.
func (s *Service) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return s.get(ctx, userID, msgProfileNotFound)
}

func (s *Service) get(ctx context.Context, userID, notFoundMsg string) (*models.Profile, error) {
	p, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound(notFoundMsg)
	}
	return s.joinOne(ctx, p)
}

// List returns every profile with its owner joined in.
func (s *Service) List(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		return []models.Profile{}, nil
	}
	if err := s.join(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// AddExperience prepends a job entry to the caller's profile.
func (s *Service) AddExperience(ctx context.Context, userID string, req models.ExperienceRequest) (*models.Profile, error) {
	var v validator.Checker
	v.Required("title", req.Title, "Title is required")
	v.Required("company", req.Company, "Company is required")
	from, to := checkPeriod(&v, req.From, req.To, req.Current)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	entry := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: strings.TrimSpace(req.Description),
	}
	p, err := s.profiles.PushExperience(ctx, userID, entry)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound(msgNoProfile)
	}
	return s.joinOne(ctx, p)
}

// AddEducation prepends a school entry to the caller's profile.
func (s *Service) AddEducation(ctx context.Context, userID string, req models.EducationRequest) (*models.Profile, error) {
	var v validator.Checker
	v.Required("school", req.School, "School is required")
	v.Required("degree", req.Degree, "Degree is required")
	v.Required("fieldofstudy", req.FieldOfStudy, "Field of study is required")
	from, to := checkPeriod(&v, req.From, req.To, req.Current)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	entry := models.Education{
		ID:           primitive.NewObjectID(),
		School:       strings.TrimSpace(req.School),
		Degree:       strings.TrimSpace(req.Degree),
		FieldOfStudy: strings.TrimSpace(req.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  strings.TrimSpace(req.Description),
	}
	p, err := s.profiles.PushEducation(ctx, userID, entry)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound(msgNoProfile)
	}
	return s.joinOne(ctx, p)
}

// checkPeriod validates the from/to pair shared by experience and
// education. A current entry has no end date.
func checkPeriod(v *validator.Checker, fromRaw, toRaw string, current bool) (time.Time, *time.Time) {
	if !v.Required("from", fromRaw, "From date is required") {
		return time.Time{}, nil
	}
	from, ok := v.Date("from", fromRaw, "From date is not a valid date")
	if !ok || current || strings.TrimSpace(toRaw) == "" {
		return from, nil
	}
	to, ok := v.Date("to", toRaw, "To date is not a valid date")
	if !ok {
		return from, nil
	}
	if to.Before(from) {
		v.Add("to", "To date must not be before from date")
		return from, nil
	}
	return from, &to
}

// RemoveExperience deletes one job entry by id.
func (s *Service) RemoveExperience(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	p, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound(msgNoProfile)
	}
	found := false
	for _, e := range p.Experience {
		if e.ID.Hex() == entryID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.NotFound("Experience not found")
	}

	updated, err := s.profiles.PullExperience(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Experience not found")
	}
	return s.joinOne(ctx, updated)
}

// RemoveEducation deletes one school entry by id.
func (s *Service) RemoveEducation(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	p, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound(msgNoProfile)
	}
	found := false
	for _, e := range p.Education {
		if e.ID.Hex() == entryID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.NotFound("Education not found")
	}

	updated, err := s.profiles.PullEducation(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Education not found")
	}
	return s.joinOne(ctx, updated)
}

// DeleteOwn removes the caller's posts, profile, avatar and account, in that
// order. The store has no multi-document transactions, so when a later step
// fails the earlier deletions are undone from a snapshot. Only snapshotted
// posts are deleted before the account; posts written after the snapshot
// are swept once the account is gone and can no longer post.
func (s *Service) DeleteOwn(ctx context.Context, userID string) error {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("snapshot profile: %w", err)
	}
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("snapshot posts: %w", err)
	}
	postIDs := make([]string, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID.Hex()
	}

	if _, err := s.posts.DeleteByIDs(ctx, postIDs); err != nil {
		// A partial DeleteMany may have removed some posts already.
		s.restorePosts(ctx, userID, posts)
		return fmt.Errorf("delete posts: %w", err)
	}
	if err := s.profiles.DeleteByUser(ctx, userID); err != nil {
		s.restorePosts(ctx, userID, posts)
		return fmt.Errorf("delete profile: %w", err)
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		s.restoreProfile(ctx, userID, profile)
		s.restorePosts(ctx, userID, posts)
		return fmt.Errorf("delete user: %w", err)
	}

	if n, err := s.posts.DeleteByUser(ctx, userID); err != nil {
		slog.WarnContext(ctx, "late post sweep failed", "user", userID, "error", err)
	} else if n > 0 {
		slog.InfoContext(ctx, "swept late posts", "user", userID, "posts", n)
	}
	if s.avatars != nil {
		if err := s.avatars.Remove(ctx, auth.AvatarKey(userID)); err != nil {
			slog.WarnContext(ctx, "avatar cleanup failed", "user", userID, "error", err)
		}
	}
	slog.InfoContext(ctx, "account deleted", "user", userID, "posts", len(posts), "had_profile", profile != nil)
	return nil
}

func (s *Service) restorePosts(ctx context.Context, userID string, posts []models.Post) {
	if len(posts) == 0 {
		return
	}
	if err := s.posts.Restore(ctx, posts); err != nil {
		slog.ErrorContext(ctx, "cascade compensation failed: posts", "user", userID, "error", err)
	}
}

func (s *Service) restoreProfile(ctx context.Context, userID string, p *models.Profile) {
	if p == nil {
		return
	}
	if err := s.profiles.Restore(ctx, p); err != nil {
		slog.ErrorContext(ctx, "cascade compensation failed: profile", "user", userID, "error", err)
	}
}

// Repos proxies the GitHub repository lookup.
func (s *Service) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	return s.github.FetchRepos(ctx, username)
}

// requireUser fails with NotFound once the account is gone. Tokens are not
// revocable, so a token can outlive its user.
func (s *Service) requireUser(ctx context.Context, userID string) error {
	users, err := s.users.GetUsersByIDs(ctx, []string{userID})
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if _, ok := users[userID]; !ok {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (s *Service) joinOne(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	one := []models.Profile{*p}
	if err := s.join(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// join fills each profile's User from the user store.
func (s *Service) join(ctx context.Context, profiles []models.Profile) error {
	ids := make([]string, 0, len(profiles))
	for i := range profiles {
		ids = append(ids, profiles[i].UserID)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("join users: %w", err)
	}
	for i := range profiles {
		profiles[i].Normalize()
		if u, ok := users[profiles[i].UserID]; ok {
			profiles[i].User = u.Summary()
		}
	}
	return nil
}
