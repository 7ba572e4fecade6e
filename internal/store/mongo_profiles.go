package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/devconnector/internal/models"
)

// MongoProfileStore keeps one profile document per user.
type MongoProfileStore struct {
	col *mongo.Collection
}

func NewMongoProfileStore(db *mongo.Database) *MongoProfileStore {
	return &MongoProfileStore{col: db.Collection(profilesCollection)}
}

func (s *MongoProfileStore) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.col.FindOne(ctx, bson.M{"user": userID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo find profile: %w", err)
	}
	p.Normalize()
	return &p, nil
}

func (s *MongoProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo list profiles: %w", err)
	}
	defer cur.Close(ctx)

	var profiles []models.Profile
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("mongo decode profiles: %w", err)
	}
	for i := range profiles {
		profiles[i].Normalize()
	}
	return profiles, nil
}

// Upsert replaces the editable fields of the user's profile, creating the
// profile when it does not exist. Experience and education are untouched.
func (s *MongoProfileStore) Upsert(ctx context.Context, userID string, f models.ProfileFields) (*models.Profile, error) {
	update := bson.M{
		"$set": f,
		"$setOnInsert": bson.M{
			"experience": bson.A{},
			"education":  bson.A{},
			"date":       time.Now().UTC(),
		},
	}
	opts := afterUpdate().SetUpsert(true)
	return s.findAndUpdate(ctx, bson.M{"user": userID}, update, opts)
}

func (s *MongoProfileStore) PushExperience(ctx context.Context, userID string, e models.Experience) (*models.Profile, error) {
	return s.prepend(ctx, userID, "experience", e)
}

func (s *MongoProfileStore) PushEducation(ctx context.Context, userID string, e models.Education) (*models.Profile, error) {
	return s.prepend(ctx, userID, "education", e)
}

func (s *MongoProfileStore) PullExperience(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	return s.pull(ctx, userID, "experience", entryID)
}

func (s *MongoProfileStore) PullEducation(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	return s.pull(ctx, userID, "education", entryID)
}

func (s *MongoProfileStore) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("mongo delete profile: %w", err)
	}
	return nil
}

// Restore writes p back under its original id.
func (s *MongoProfileStore) Restore(ctx context.Context, p *models.Profile) error {
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo restore profile: %w", err)
	}
	return nil
}

func (s *MongoProfileStore) prepend(ctx context.Context, userID, field string, entry any) (*models.Profile, error) {
	update := bson.M{"$push": bson.M{field: bson.M{"$each": bson.A{entry}, "$position": 0}}}
	return s.findAndUpdate(ctx, bson.M{"user": userID}, update, afterUpdate())
}

func (s *MongoProfileStore) pull(ctx context.Context, userID, field, entryID string) (*models.Profile, error) {
	oid, ok := objectID(entryID)
	if !ok {
		return nil, nil
	}
	filter := bson.M{"user": userID, field + "._id": oid}
	update := bson.M{"$pull": bson.M{field: bson.M{"_id": oid}}}
	return s.findAndUpdate(ctx, filter, update, afterUpdate())
}

func (s *MongoProfileStore) findAndUpdate(ctx context.Context, filter, update bson.M, opts *options.FindOneAndUpdateOptions) (*models.Profile, error) {
	var p models.Profile
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo update profile: %w", err)
	}
	p.Normalize()
	return &p, nil
}
