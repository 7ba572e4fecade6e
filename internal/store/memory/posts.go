package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devconnector/internal/models"
)

// PostStore keeps posts keyed by ObjectID hex.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
	// seq breaks ties between posts created within the same clock tick.
	seq  map[string]int64
	next int64
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]*models.Post), seq: make(map[string]int64)}
}

func (s *PostStore) Insert(_ context.Context, post *models.Post) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.Normalize()
	id := post.ID.Hex()
	s.posts[id] = clonePost(post)
	s.next++
	s.seq[id] = s.next
	return id, nil
}

func (s *PostStore) List(_ context.Context) ([]models.Post, error) {
	return s.filter(func(*models.Post) bool { return true }), nil
}

func (s *PostStore) ListByUser(_ context.Context, userID string) ([]models.Post, error) {
	return s.filter(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (s *PostStore) GetByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(p), nil
}

func (s *PostStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, id)
	delete(s.seq, id)
	return nil
}

func (s *PostStore) DeleteByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, p := range s.posts {
		if p.UserID == userID {
			delete(s.posts, id)
			delete(s.seq, id)
			n++
		}
	}
	return n, nil
}

func (s *PostStore) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := s.posts[id]; ok {
			delete(s.posts, id)
			delete(s.seq, id)
			n++
		}
	}
	return n, nil
}

func (s *PostStore) Restore(_ context.Context, posts []models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range posts {
		id := posts[i].ID.Hex()
		s.posts[id] = clonePost(&posts[i])
		if _, ok := s.seq[id]; !ok {
			s.next++
			s.seq[id] = s.next
		}
	}
	return nil
}

func (s *PostStore) AddLike(_ context.Context, id string, like models.Like) (*models.Post, error) {
	return s.mutate(id, func(p *models.Post) bool {
		if p.LikedBy(like.UserID) {
			return false
		}
		p.Likes = append([]models.Like{like}, p.Likes...)
		return true
	})
}

func (s *PostStore) RemoveLike(_ context.Context, id, userID string) (*models.Post, error) {
	return s.mutate(id, func(p *models.Post) bool {
		kept := p.Likes[:0:0]
		for _, l := range p.Likes {
			if l.UserID != userID {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(p.Likes) {
			return false
		}
		p.Likes = kept
		return true
	})
}

func (s *PostStore) AddComment(_ context.Context, id string, c models.Comment) (*models.Post, error) {
	return s.mutate(id, func(p *models.Post) bool {
		p.Comments = append([]models.Comment{c}, p.Comments...)
		return true
	})
}

func (s *PostStore) RemoveComment(_ context.Context, id, commentID string) (*models.Post, error) {
	return s.mutate(id, func(p *models.Post) bool {
		for i, c := range p.Comments {
			if c.ID.Hex() == commentID {
				p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *PostStore) mutate(id string, fn func(*models.Post) bool) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok || !fn(p) {
		return nil, nil
	}
	return clonePost(p), nil
}

// filter returns matching posts newest first.
func (s *PostStore) filter(keep func(*models.Post) bool) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		post models.Post
		seq  int64
	}
	entries := make([]entry, 0, len(s.posts))
	for id, p := range s.posts {
		if keep(p) {
			entries = append(entries, entry{post: *clonePost(p), seq: s.seq[id]})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]models.Post, len(entries))
	for i := range entries {
		out[i] = entries[i].post
	}
	return out
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Likes = append([]models.Like(nil), p.Likes...)
	c.Comments = append([]models.Comment(nil), p.Comments...)
	c.Normalize()
	return &c
}
