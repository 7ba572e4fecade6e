package profile

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/auth"
	"github.com/ayush/devconnector/internal/models"
	"github.com/ayush/devconnector/internal/store/memory"
)

type fixture struct {
	svc      *Service
	users    *memory.UserStore
	profiles *memory.ProfileStore
	posts    *memory.PostStore
	avatars  *memory.ObjectStore
}

func newFixture() *fixture {
	f := &fixture{
		users:    memory.NewUserStore(),
		profiles: memory.NewProfileStore(),
		posts:    memory.NewPostStore(),
		avatars:  memory.NewObjectStore(),
	}
	f.svc = NewService(f.profiles, f.users, f.posts, f.avatars, NewGitHubClient("", "", 0))
	return f
}

func (f *fixture) user(t *testing.T, name, email string) string {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), &models.User{Name: name, Email: email, Avatar: "a.png"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func validProfile() models.ProfileRequest {
	return models.ProfileRequest{Status: "Developer", Skills: "a, b ,c", Company: "Acme", Twitter: "https://twitter.com/jane"}
}

func TestUpsertRequiresStatusAndSkills(t *testing.T) {
	f := newFixture()
	uid := f.user(t, "Jane", "jane@example.com")

	_, err := f.svc.UpsertOwn(context.Background(), uid, models.ProfileRequest{Status: "Developer", Skills: ""})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError for empty skills, got %v", err)
	}
	_, err = f.svc.UpsertOwn(context.Background(), uid, models.ProfileRequest{Skills: "go"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError for missing status, got %v", err)
	}
}

func TestUpsertSplitsSkillsAndJoinsUser(t *testing.T) {
	f := newFixture()
	uid := f.user(t, "Jane", "jane@example.com")

	p, err := f.svc.UpsertOwn(context.Background(), uid, validProfile())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !reflect.DeepEqual(p.Skills, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected skills %#v", p.Skills)
	}
	if p.User == nil || p.User.Name != "Jane" || p.User.ID != uid {
		t.Fatalf("user not joined: %+v", p.User)
	}
	if p.Social.Twitter != "https://twitter.com/jane" {
		t.Fatalf("social not stored: %+v", p.Social)
	}
}

func TestUpsertReplacesFieldsAndKeepsExperience(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")

	first, _ := f.svc.UpsertOwn(ctx, uid, validProfile())
	if _, err := f.svc.AddExperience(ctx, uid, models.ExperienceRequest{Title: "Dev", Company: "Acme", From: "2020-01-01"}); err != nil {
		t.Fatalf("add experience: %v", err)
	}

	p, err := f.svc.UpsertOwn(ctx, uid, models.ProfileRequest{Status: "Lead", Skills: "go"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if p.ID != first.ID {
		t.Fatalf("upsert created a second profile")
	}
	if p.Status != "Lead" || p.Company != "" || p.Social.Twitter != "" {
		t.Fatalf("fields not replaced: %+v", p)
	}
	if len(p.Experience) != 1 {
		t.Fatalf("experience should be untouched, got %d entries", len(p.Experience))
	}

	again, _ := f.svc.UpsertOwn(ctx, uid, models.ProfileRequest{Status: "Lead", Skills: "go"})
	again.User, p.User = nil, nil
	if !reflect.DeepEqual(again, p) {
		t.Fatalf("resubmitting identical fields changed state:\n%+v\n%+v", again, p)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.GetOwn(context.Background(), "nobody"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := f.svc.GetByUser(context.Background(), "not-an-id"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestListJoinsAllUsers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.user(t, "Ann", "ann@example.com")
	b := f.user(t, "Bob", "bob@example.com")
	f.svc.UpsertOwn(ctx, a, validProfile())
	f.svc.UpsertOwn(ctx, b, validProfile())

	list, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(list))
	}
	for _, p := range list {
		if p.User == nil {
			t.Fatalf("profile %s missing joined user", p.ID.Hex())
		}
	}
}

func TestExperienceAddRemove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")

	if _, err := f.svc.AddExperience(ctx, uid, models.ExperienceRequest{Title: "Dev", Company: "Acme", From: "2020-01-01"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound without profile, got %v", err)
	}

	f.svc.UpsertOwn(ctx, uid, validProfile())
	f.svc.AddExperience(ctx, uid, models.ExperienceRequest{Title: "Junior", Company: "Acme", From: "2018-01-01", To: "2019-12-31"})
	p, err := f.svc.AddExperience(ctx, uid, models.ExperienceRequest{Title: "Senior", Company: "Globex", From: "2020-01-01", Current: true, To: "2021-01-01"})
	if err != nil {
		t.Fatalf("add experience: %v", err)
	}
	if len(p.Experience) != 2 || p.Experience[0].Title != "Senior" {
		t.Fatalf("expected newest entry first, got %+v", p.Experience)
	}
	if p.Experience[0].To != nil {
		t.Fatalf("current entry should have no end date")
	}
	if p.Experience[1].To == nil || p.Experience[1].To.Year() != 2019 {
		t.Fatalf("end date not stored: %+v", p.Experience[1])
	}

	id := p.Experience[0].ID.Hex()
	p, err = f.svc.RemoveExperience(ctx, uid, id)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(p.Experience) != 1 || p.Experience[0].Title != "Junior" {
		t.Fatalf("wrong entry removed: %+v", p.Experience)
	}
	if _, err := f.svc.RemoveExperience(ctx, uid, id); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound on second removal, got %v", err)
	}
	if _, err := f.svc.RemoveExperience(ctx, uid, "garbage"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for malformed id, got %v", err)
	}
}

func TestExperienceValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")
	f.svc.UpsertOwn(ctx, uid, validProfile())

	cases := []models.ExperienceRequest{
		{Company: "Acme", From: "2020-01-01"},
		{Title: "Dev", From: "2020-01-01"},
		{Title: "Dev", Company: "Acme"},
		{Title: "Dev", Company: "Acme", From: "someday"},
		{Title: "Dev", Company: "Acme", From: "2020-01-01", To: "2019-01-01"},
	}
	for i, req := range cases {
		if _, err := f.svc.AddExperience(ctx, uid, req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestEducationAddRemove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")
	f.svc.UpsertOwn(ctx, uid, validProfile())

	if _, err := f.svc.AddEducation(ctx, uid, models.EducationRequest{School: "MIT", Degree: "BSc", From: "2010-09-01"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected ValidationError without field of study, got %v", err)
	}
	p, err := f.svc.AddEducation(ctx, uid, models.EducationRequest{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"})
	if err != nil {
		t.Fatalf("add education: %v", err)
	}
	id := p.Education[0].ID.Hex()
	p, err = f.svc.RemoveEducation(ctx, uid, id)
	if err != nil {
		t.Fatalf("remove education: %v", err)
	}
	if len(p.Education) != 0 {
		t.Fatalf("education not removed")
	}
	if _, err := f.svc.RemoveEducation(ctx, uid, id); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound on second removal, got %v", err)
	}
}

func TestDeleteOwnCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")
	other := f.user(t, "Bob", "bob@example.com")
	f.svc.UpsertOwn(ctx, uid, validProfile())
	f.posts.Insert(ctx, &models.Post{UserID: uid, Text: "mine"})
	f.posts.Insert(ctx, &models.Post{UserID: other, Text: "theirs"})
	f.avatars.Put(ctx, auth.AvatarKey(uid), strings.NewReader("png"), 3, "image/png")

	if err := f.svc.DeleteOwn(ctx, uid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.GetByUser(ctx, uid); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("profile should be gone, got %v", err)
	}
	if u, _ := f.users.GetUserByID(ctx, uid); u != nil {
		t.Fatalf("user should be gone")
	}
	if mine, _ := f.posts.ListByUser(ctx, uid); len(mine) != 0 {
		t.Fatalf("posts should be gone, %d left", len(mine))
	}
	if theirs, _ := f.posts.ListByUser(ctx, other); len(theirs) != 1 {
		t.Fatalf("other user's posts must survive")
	}
	if _, _, _, err := f.avatars.Open(ctx, auth.AvatarKey(uid)); err == nil {
		t.Fatalf("avatar should be removed")
	}
}

type failingUsers struct {
	*memory.UserStore
}

func (failingUsers) DeleteUser(context.Context, string) error {
	return errors.New("users collection unavailable")
}

func TestDeleteOwnCompensatesOnFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")
	f.svc.UpsertOwn(ctx, uid, validProfile())
	f.posts.Insert(ctx, &models.Post{UserID: uid, Text: "keep me"})

	svc := NewService(f.profiles, failingUsers{f.users}, f.posts, nil, nil)
	err := svc.DeleteOwn(ctx, uid)
	if err == nil || apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}

	if p, _ := f.profiles.GetByUser(ctx, uid); p == nil {
		t.Fatalf("profile should be restored")
	}
	if posts, _ := f.posts.ListByUser(ctx, uid); len(posts) != 1 || posts[0].Text != "keep me" {
		t.Fatalf("posts should be restored, got %+v", posts)
	}
}

func TestDeletedUserCannotWriteProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")
	f.users.DeleteUser(ctx, uid)

	if _, err := f.svc.UpsertOwn(ctx, uid, validProfile()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if p, _ := f.profiles.GetByUser(ctx, uid); p != nil {
		t.Fatalf("orphan profile created: %+v", p)
	}
	if _, err := f.svc.AddExperience(ctx, uid, models.ExperienceRequest{Title: "Dev", Company: "Acme", From: "2020-01-01"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := f.svc.AddEducation(ctx, uid, models.EducationRequest{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// lateWriter inserts a post for the same user right after the cascade
// snapshots the user's posts.
type lateWriter struct {
	*memory.PostStore
	late *models.Post
}

func (s *lateWriter) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	posts, err := s.PostStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.late = &models.Post{UserID: userID, Text: "late"}
	if _, err := s.PostStore.Insert(ctx, s.late); err != nil {
		return nil, err
	}
	return posts, nil
}

func TestDeleteOwnSweepsLatePosts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")
	f.posts.Insert(ctx, &models.Post{UserID: uid, Text: "early"})

	posts := &lateWriter{PostStore: f.posts}
	svc := NewService(f.profiles, f.users, posts, nil, nil)
	if err := svc.DeleteOwn(ctx, uid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if left, _ := f.posts.ListByUser(ctx, uid); len(left) != 0 {
		t.Fatalf("expected every post gone, %d left", len(left))
	}
}

func TestDeleteOwnFailureLeavesLatePosts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uid := f.user(t, "Jane", "jane@example.com")
	f.posts.Insert(ctx, &models.Post{UserID: uid, Text: "early"})

	posts := &lateWriter{PostStore: f.posts}
	svc := NewService(f.profiles, failingUsers{f.users}, posts, nil, nil)
	if err := svc.DeleteOwn(ctx, uid); err == nil {
		t.Fatal("expected failure")
	}

	left, _ := f.posts.ListByUser(ctx, uid)
	texts := map[string]bool{}
	for _, p := range left {
		texts[p.Text] = true
	}
	if len(left) != 2 || !texts["early"] || !texts["late"] {
		t.Fatalf("expected early post restored and late post untouched, got %+v", left)
	}
}
