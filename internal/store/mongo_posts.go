package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/devconnector/internal/models"
)

// MongoPostStore handles post CRUD and the embedded likes/comments lists.
type MongoPostStore struct {
	col *mongo.Collection
}

func NewMongoPostStore(db *mongo.Database) *MongoPostStore {
	return &MongoPostStore{col: db.Collection(postsCollection)}
}

func (s *MongoPostStore) Insert(ctx context.Context, post *models.Post) (string, error) {
	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.Normalize()
	if _, err := s.col.InsertOne(ctx, post); err != nil {
		return "", fmt.Errorf("mongo insert post: %w", err)
	}
	return post.ID.Hex(), nil
}

// List returns every post, newest first.
func (s *MongoPostStore) List(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoPostStore) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *MongoPostStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var post models.Post
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo find post: %w", err)
	}
	post.Normalize()
	return &post, nil
}

func (s *MongoPostStore) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("mongo delete post: %w", err)
	}
	return nil
}

func (s *MongoPostStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, fmt.Errorf("mongo delete posts: %w", err)
	}
	return res.DeletedCount, nil
}

// DeleteByIDs removes the listed posts. Malformed ids are skipped.
func (s *MongoPostStore) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("mongo delete posts: %w", err)
	}
	return res.DeletedCount, nil
}

// Restore re-inserts posts under their original ids.
func (s *MongoPostStore) Restore(ctx context.Context, posts []models.Post) error {
	for i := range posts {
		_, err := s.col.ReplaceOne(ctx, bson.M{"_id": posts[i].ID}, posts[i], options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("mongo restore post %s: %w", posts[i].ID.Hex(), err)
		}
	}
	return nil
}

// AddLike prepends like unless like.UserID already likes the post. A nil
// post means the post is gone or already liked.
func (s *MongoPostStore) AddLike(ctx context.Context, id string, like models.Like) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	filter := bson.M{"_id": oid, "likes.user": bson.M{"$ne": like.UserID}}
	update := bson.M{"$push": bson.M{"likes": bson.M{"$each": bson.A{like}, "$position": 0}}}
	return s.findAndUpdate(ctx, filter, update)
}

// RemoveLike pulls userID's like. A nil post means there was nothing to remove.
func (s *MongoPostStore) RemoveLike(ctx context.Context, id, userID string) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	filter := bson.M{"_id": oid, "likes.user": userID}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
	return s.findAndUpdate(ctx, filter, update)
}

func (s *MongoPostStore) AddComment(ctx context.Context, id string, c models.Comment) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	update := bson.M{"$push": bson.M{"comments": bson.M{"$each": bson.A{c}, "$position": 0}}}
	return s.findAndUpdate(ctx, bson.M{"_id": oid}, update)
}

func (s *MongoPostStore) RemoveComment(ctx context.Context, id, commentID string) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	cid, ok := objectID(commentID)
	if !ok {
		return nil, nil
	}
	filter := bson.M{"_id": oid, "comments._id": cid}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": cid}}}
	return s.findAndUpdate(ctx, filter, update)
}

func (s *MongoPostStore) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("mongo decode posts: %w", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (s *MongoPostStore) findAndUpdate(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	var post models.Post
	if err := s.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo update post: %w", err)
	}
	post.Normalize()
	return &post, nil
}
