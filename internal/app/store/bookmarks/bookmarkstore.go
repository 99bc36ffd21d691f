// internal/app/store/bookmarks/bookmarkstore.go
package bookmarkstore

import (
	"context"
	"time"

	"github.com/markhold/markhold/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bookmarks")}
}

// Create inserts the bookmark as a single document write: it either lands
// whole or not at all, so a failed save never leaves a partial record.
// ID and timestamps are assigned here.
func (s *Store) Create(ctx context.Context, b models.Bookmark) (models.Bookmark, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	if b.Type == "" {
		b.Type = models.BookmarkTypeLink
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Bookmark{}, err
	}
	return b, nil
}

// ListByUser returns the user's bookmarks, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

// ListByGroup returns the user's bookmarks in one group, newest first.
// The user filter keeps a guessed group ID from leaking someone else's
// bookmarks.
func (s *Store) ListByGroup(ctx context.Context, userID, groupID primitive.ObjectID) ([]models.Bookmark, error) {
	return s.list(ctx, bson.M{"user_id": userID, "group_id": groupID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Bookmark, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var bookmarks []models.Bookmark
	if err := cur.All(ctx, &bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// Delete removes a bookmark owned by the user. Returns the number of
// documents deleted (0 or 1); deleting someone else's bookmark is a 0,
// not an error.
func (s *Store) Delete(ctx context.Context, userID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes all of the user's bookmarks in a group. Used when
// the group itself is deleted. Returns the number deleted.
func (s *Store) DeleteByGroup(ctx context.Context, userID, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID, "group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
