package posts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/validator"
)

const (
	msgPostNotFound  = "Post not found"
	msgNotAuthorized = "User not authorized"
)

// PostStore defines the interface for post persistence. GetByID and the
// array mutations return (nil, nil) when the post is absent or the
// mutation's filter did not match.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) (string, error)
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, id string, like models.Like) (*models.Post, error)
	RemoveLike(ctx context.Context, id, userID string) (*models.Post, error)
	AddComment(ctx context.Context, id string, c models.Comment) (*models.Post, error)
	RemoveComment(ctx context.Context, id, commentID string) (*models.Post, error)
}

// UserStore is the subset of user persistence posts need.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Service implements posts, likes and comments.
type Service struct {
	posts PostStore
	users UserStore
	now   func() time.Time
}

func NewService(posts PostStore, users UserStore) *Service {
	return &Service{posts: posts, users: users, now: time.Now}
}

// Create publishes a post, copying the author's name and avatar onto it.
func (s *Service) Create(ctx context.Context, userID, text string) (*models.Post, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:    userID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []models.Like{},
		Comments:  []models.Comment{},
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.posts.Insert(ctx, post); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		return []models.Post{}, nil
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

// Get returns one post.
func (s *Service) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound(msgPostNotFound)
	}
	post.Normalize()
	return post, nil
}

// Delete removes a post owned by requesterID.
func (s *Service) Delete(ctx context.Context, postID, requesterID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != requesterID {
		return apperr.Forbidden(msgNotAuthorized)
	}
	return s.posts.Delete(ctx, postID)
}

// Like adds userID's like to the front of the post's likes.
func (s *Service) Like(ctx context.Context, postID, userID string) ([]models.Like, error) {
	if _, err := s.author(ctx, userID); err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(userID) {
		return nil, errAlreadyLiked()
	}

	updated, err := s.posts.AddLike(ctx, postID, models.Like{ID: primitive.NewObjectID(), UserID: userID})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Either a concurrent like won or the post was deleted meanwhile.
		if _, err := s.Get(ctx, postID); err != nil {
			return nil, err
		}
		return nil, errAlreadyLiked()
	}
	updated.Normalize()
	return updated.Likes, nil
}

// Unlike removes userID's like.
func (s *Service) Unlike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.LikedBy(userID) {
		return nil, errNotLiked()
	}

	updated, err := s.posts.RemoveLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		if _, err := s.Get(ctx, postID); err != nil {
			return nil, err
		}
		return nil, errNotLiked()
	}
	updated.Normalize()
	return updated.Likes, nil
}

// AddComment prepends a comment by userID.
func (s *Service) AddComment(ctx context.Context, postID, userID, text string) ([]models.Comment, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.posts.AddComment(ctx, postID, models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound(msgPostNotFound)
	}
	updated.Normalize()
	return updated.Comments, nil
}

// RemoveComment deletes the comment with commentID if requesterID wrote it.
func (s *Service) RemoveComment(ctx context.Context, postID, commentID, requesterID string) ([]models.Comment, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.FindComment(commentID)
	if comment == nil {
		return nil, apperr.NotFound("Comment does not exist")
	}
	if comment.UserID != requesterID {
		return nil, apperr.Forbidden(msgNotAuthorized)
	}

	updated, err := s.posts.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Comment does not exist")
	}
	updated.Normalize()
	return updated.Comments, nil
}

func (s *Service) author(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func requireText(text string) (string, error) {
	var v validator.Checker
	v.Required("text", text, "Text is required")
	if err := v.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func errAlreadyLiked() error {
	return apperr.New(apperr.KindAlreadyLiked, "Post already liked")
}

func errNotLiked() error {
	return apperr.New(apperr.KindNotLiked, "Post has not yet been liked")
}
