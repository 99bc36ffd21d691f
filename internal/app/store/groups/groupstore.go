// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
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
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Create inserts a group for its user. ID and timestamps are assigned
// here; a missing color falls back to the default group color.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Color == "" {
		g.Color = models.DefaultGroupColor
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListByUser returns the user's groups oldest first, matching the order
// they appear in the app.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FindEarliestByUser returns the user's earliest-created group, the
// implicit default for capture endpoints that don't name one. The _id
// tiebreak makes equal timestamps deterministic. Returns (nil, nil) when
// the user has no groups; that absence is a caller policy decision, not a
// store error.
func (s *Store) FindEarliestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Group, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Delete removes a group owned by the user. Returns the number of
// documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, userID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
