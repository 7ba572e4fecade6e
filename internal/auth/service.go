package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/store"
	"github.com/ayush/devconnector/internal/validator"
)

// MaxAvatarBytes caps uploaded avatar images.
const MaxAvatarBytes = 2 << 20

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

const msgInvalidCredentials = "Invalid Credentials"

// UserStore defines the interface for user persistence. Lookups return
// (nil, nil) when the user does not exist.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, avatar string) error
}

// ObjectStore defines the interface for avatar image storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, int64, error)
	Remove(ctx context.Context, key string) error
}

// Service implements registration, login and the current-user lookup.
type Service struct {
	users   UserStore
	tokens  *TokenService
	avatars ObjectStore
}

// NewService builds the credential service. avatars may be nil, which
// disables uploaded avatars.
func NewService(users UserStore, tokens *TokenService, avatars ObjectStore) *Service {
	return &Service{users: users, tokens: tokens, avatars: avatars}
}

// AvatarKey is the object key of a user's uploaded avatar.
func AvatarKey(userID string) string {
	return "avatars/" + userID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and returns a token for it.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	var v validator.Checker
	v.Required("name", req.Name, "Name is required")
	v.Email("email", req.Email, "Please include a valid email")
	if v.MinLen("password", req.Password, 6, "Please enter a password with 6 or more characters") {
		v.MaxBytes("password", req.Password, maxPasswordBytes, "Please enter a password of at most 72 bytes")
	}
	if err := v.Err(); err != nil {
		return "", err
	}

	email := normalizeEmail(req.Email)
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", userExists()
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return "", err
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hashed,
		Avatar:   gravatarURL(email),
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return "", userExists()
	}
	if err != nil {
		return "", err
	}

	return s.tokens.Issue(user.ID)
}

func userExists() error {
	return apperr.Validation(apperr.FieldError{Param: "email", Msg: "User already exists"})
}

// Login checks credentials and returns a token. Unknown email and wrong
// password fail identically.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	var v validator.Checker
	v.Email("email", req.Email, "Please include a valid email")
	v.Required("password", req.Password, "Password is required")
	if err := v.Err(); err != nil {
		return "", err
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return "", err
	}
	if user == nil {
		checkPassword(string(dummyHash), req.Password)
		return "", apperr.New(apperr.KindInvalidCredentials, msgInvalidCredentials)
	}
	if !checkPassword(user.Password, req.Password) {
		return "", apperr.New(apperr.KindInvalidCredentials, msgInvalidCredentials)
	}

	return s.tokens.Issue(user.ID)
}

// CurrentUser returns the authenticated user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// AvatarsEnabled reports whether uploaded avatars are configured.
func (s *Service) AvatarsEnabled() bool {
	return s.avatars != nil
}

// SetAvatar stores an uploaded image and points the user's avatar at it.
func (s *Service) SetAvatar(ctx context.Context, userID string, data []byte) (*models.User, error) {
	if s.avatars == nil {
		return nil, apperr.NotFound("Avatar uploads are disabled")
	}
	if len(data) == 0 {
		return nil, apperr.Validation(apperr.FieldError{Param: "avatar", Msg: "Avatar image is required"})
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperr.Validation(apperr.FieldError{Param: "avatar", Msg: "Avatar must be 2MB or smaller"})
	}
	contentType := http.DetectContentType(data)
	if !allowedAvatarTypes[contentType] {
		return nil, apperr.Validation(apperr.FieldError{Param: "avatar", Msg: "Avatar must be a PNG, JPEG, GIF or WebP image"})
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.avatars.Put(ctx, AvatarKey(userID), bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, err
	}
	// The version query makes clients drop cached copies of the old image.
	avatarURL := fmt.Sprintf("/api/users/%s/avatar?v=%s", userID, uuid.NewString()[:8])
	if err := s.users.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return nil, err
	}
	user.Avatar = avatarURL
	return user, nil
}

// Avatar opens a user's uploaded avatar. The caller closes the reader.
func (s *Service) Avatar(ctx context.Context, userID string) (io.ReadCloser, string, int64, error) {
	if s.avatars == nil {
		return nil, "", 0, apperr.NotFound("Avatar not found")
	}
	rc, contentType, size, err := s.avatars.Open(ctx, AvatarKey(userID))
	if errors.Is(err, store.ErrObjectNotFound) {
		return nil, "", 0, apperr.NotFound("Avatar not found")
	}
	if err != nil {
		return nil, "", 0, err
	}
	return rc, contentType, size, nil
}
