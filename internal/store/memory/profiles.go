package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devconnector/internal/models"
)

// ProfileStore keeps profiles keyed by owning user id.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]*models.Profile)}
}

func (s *ProfileStore) GetByUser(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func (s *ProfileStore) List(_ context.Context) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *cloneProfile(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *ProfileStore) Upsert(_ context.Context, userID string, f models.ProfileFields) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = &models.Profile{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		s.profiles[userID] = p
	}
	p.Apply(f)
	p.Normalize()
	return cloneProfile(p), nil
}

func (s *ProfileStore) PushExperience(_ context.Context, userID string, e models.Experience) (*models.Profile, error) {
	return s.mutate(userID, func(p *models.Profile) bool {
		p.Experience = append([]models.Experience{e}, p.Experience...)
		return true
	})
}

func (s *ProfileStore) PushEducation(_ context.Context, userID string, e models.Education) (*models.Profile, error) {
	return s.mutate(userID, func(p *models.Profile) bool {
		p.Education = append([]models.Education{e}, p.Education...)
		return true
	})
}

func (s *ProfileStore) PullExperience(_ context.Context, userID, entryID string) (*models.Profile, error) {
	return s.mutate(userID, func(p *models.Profile) bool {
		for i, e := range p.Experience {
			if e.ID.Hex() == entryID {
				p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *ProfileStore) PullEducation(_ context.Context, userID, entryID string) (*models.Profile, error) {
	return s.mutate(userID, func(p *models.Profile) bool {
		for i, e := range p.Education {
			if e.ID.Hex() == entryID {
				p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *ProfileStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, userID)
	return nil
}

func (s *ProfileStore) Restore(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[p.UserID] = cloneProfile(p)
	return nil
}

// mutate applies fn to the user's profile; a false return or a missing
// profile yields nil, matching a filtered update that matched nothing.
func (s *ProfileStore) mutate(userID string, fn func(*models.Profile) bool) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok || !fn(p) {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	c.User = nil
	c.Skills = append([]string(nil), p.Skills...)
	c.Experience = append([]models.Experience(nil), p.Experience...)
	c.Education = append([]models.Education(nil), p.Education...)
	c.Normalize()
	return &c
}
