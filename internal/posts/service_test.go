package posts

import (
	"context"
	"testing"
	"time"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/store/memory"
)

type fixture struct {
	svc   *Service
	posts *memory.PostStore
	users *memory.UserStore
}

func newFixture() *fixture {
	f := &fixture{posts: memory.NewPostStore(), users: memory.NewUserStore()}
	f.svc = NewService(f.posts, f.users)
	return f
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com", Avatar: "//gravatar/" + name})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func TestCreateSnapshotsAuthor(t *testing.T) {
	f := newFixture()
	uid := f.user(t, "jane")

	if _, err := f.svc.Create(context.Background(), uid, "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError for blank text, got %v", err)
	}

	post, err := f.svc.Create(context.Background(), uid, "hello")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID.IsZero() || post.Name != "jane" || post.Avatar != "//gravatar/jane" || post.UserID != uid {
		t.Fatalf("unexpected post %+v", post)
	}
	if post.Likes == nil || post.Comments == nil {
		t.Fatalf("lists should be empty, not nil")
	}
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "jane")

	empty, err := f.svc.List(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", empty, err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.svc.now = func() time.Time { return at }
		if _, err := f.svc.Create(ctx, uid, text); err != nil {
			t.Fatalf("create %s: %v", text, err)
		}
	}

	list, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Text != "third" || list[2].Text != "first" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestGetAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	post, _ := f.svc.Create(ctx, owner, "mine")
	id := post.ID.Hex()

	if _, err := f.svc.Get(ctx, "not-a-valid-id"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err := f.svc.Delete(ctx, id, other); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, id, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, id); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if err := f.svc.Delete(ctx, id, owner); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound on second delete, got %v", err)
	}
}

func TestLikeUnlike(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	post, _ := f.svc.Create(ctx, a, "likeable")
	id := post.ID.Hex()

	if _, err := f.svc.Unlike(ctx, id, a); !apperr.Is(err, apperr.KindNotLiked) {
		t.Fatalf("expected NotLiked, got %v", err)
	}

	likes, err := f.svc.Like(ctx, id, a)
	if err != nil || len(likes) != 1 || likes[0].UserID != a {
		t.Fatalf("like: %v %+v", err, likes)
	}
	if _, err := f.svc.Like(ctx, id, a); !apperr.Is(err, apperr.KindAlreadyLiked) {
		t.Fatalf("expected AlreadyLiked, got %v", err)
	}

	likes, _ = f.svc.Like(ctx, id, b)
	if len(likes) != 2 || likes[0].UserID != b {
		t.Fatalf("newest like should be first: %+v", likes)
	}

	likes, err = f.svc.Unlike(ctx, id, a)
	if err != nil || len(likes) != 1 || likes[0].UserID != b {
		t.Fatalf("unlike: %v %+v", err, likes)
	}

	if _, err := f.svc.Like(ctx, "missing", a); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// racingStore reports that a concurrent request already added the like.
type racingStore struct {
	*memory.PostStore
}

func (racingStore) AddLike(context.Context, string, models.Like) (*models.Post, error) {
	return nil, nil
}

func TestLikeRaceYieldsAlreadyLiked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "jane")
	post, _ := f.svc.Create(ctx, uid, "contested")

	svc := NewService(racingStore{f.posts}, f.users)
	if _, err := svc.Like(ctx, post.ID.Hex(), uid); !apperr.Is(err, apperr.KindAlreadyLiked) {
		t.Fatalf("expected AlreadyLiked, got %v", err)
	}
}

func TestComments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner")
	commenter := f.user(t, "commenter")
	post, _ := f.svc.Create(ctx, owner, "discuss")
	id := post.ID.Hex()

	if _, err := f.svc.AddComment(ctx, id, commenter, ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := f.svc.AddComment(ctx, "missing", commenter, "hi"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	f.svc.AddComment(ctx, id, owner, "first")
	comments, err := f.svc.AddComment(ctx, id, commenter, "second")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "second" || comments[0].Name != "commenter" {
		t.Fatalf("unexpected comments %+v", comments)
	}

	commentID := comments[0].ID.Hex()
	if _, err := f.svc.RemoveComment(ctx, id, commentID, owner); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden for non-author, got %v", err)
	}
	if _, err := f.svc.RemoveComment(ctx, id, "nope", commenter); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for missing comment, got %v", err)
	}

	comments, err = f.svc.RemoveComment(ctx, id, commentID, commenter)
	if err != nil {
		t.Fatalf("remove comment: %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "first" {
		t.Fatalf("wrong comment removed: %+v", comments)
	}
	if _, err := f.svc.RemoveComment(ctx, id, commentID, commenter); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound on second removal, got %v", err)
	}
}

func TestLikeByDeletedUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner")
	gone := f.user(t, "gone")
	post, _ := f.svc.Create(ctx, owner, "still here")
	f.users.DeleteUser(ctx, gone)

	if _, err := f.svc.Like(ctx, post.ID.Hex(), gone); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	got, _ := f.svc.Get(ctx, post.ID.Hex())
	if len(got.Likes) != 0 {
		t.Fatalf("like from deleted user stored: %+v", got.Likes)
	}
}
