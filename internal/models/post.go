package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like marks one user's like on a post.
type Like struct {
	ID     primitive.ObjectID `json:"_id"  bson:"_id"`
	UserID string             `json:"user" bson:"user"`
}

// Comment is embedded in a post with a snapshot of its author.
type Comment struct {
	ID        primitive.ObjectID `json:"_id"    bson:"_id"`
	UserID    string             `json:"user"   bson:"user"`
	Text      string             `json:"text"   bson:"text"`
	Name      string             `json:"name"   bson:"name"`
	Avatar    string             `json:"avatar" bson:"avatar"`
	CreatedAt time.Time          `json:"date"   bson:"date"`
}

// Post is a status update stored in MongoDB. Name and Avatar are copied
// from the author when the post is created.
type Post struct {
	ID        primitive.ObjectID `json:"_id"      bson:"_id,omitempty"`
	UserID    string             `json:"user"     bson:"user"`
	Text      string             `json:"text"     bson:"text"`
	Name      string             `json:"name"     bson:"name"`
	Avatar    string             `json:"avatar"   bson:"avatar"`
	Likes     []Like             `json:"likes"    bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"date"     bson:"date"`
}

// Normalize replaces nil lists so they serialize as [].
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// LikedBy reports whether userID already likes the post.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given hex id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID.Hex() == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// TextRequest is the JSON body for creating a post or a comment.
type TextRequest struct {
	Text string `json:"text"`
}
