package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/markhold/markhold/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user. The password hash is deliberately junk;
// use the user store's Create in tests that exercise login.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: []byte("test-hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup inserts a test group for the user with the given creation
// time, so tests can control which group is "earliest".
func (f *Fixtures) CreateGroup(ctx context.Context, userID primitive.ObjectID, name string, createdAt time.Time) models.Group {
	f.t.Helper()

	g := models.Group{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      name,
		Color:     models.DefaultGroupColor,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreateBookmark inserts a test bookmark.
func (f *Fixtures) CreateBookmark(ctx context.Context, userID, groupID primitive.ObjectID, title, url string) models.Bookmark {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Bookmark{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		GroupID:   groupID,
		Title:     title,
		URL:       url,
		Type:      models.BookmarkTypeLink,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("bookmarks").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test bookmark: %v", err)
	}
	return b
}
