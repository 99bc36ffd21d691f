// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a named collection of bookmarks belonging to one user.
//
// There is no stored "default" flag: the user's earliest-created group is
// treated as the default wherever an entry point (like the extension
// capture endpoint) has to pick a group on the user's behalf.
type Group struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name   string             `bson:"name" json:"name"`
	Color  string             `bson:"color" json:"color"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Default group values applied at signup (every account starts with one
// group so bookmark capture always has somewhere to land).
const (
	DefaultGroupName  = "Bookmarks"
	DefaultGroupColor = "#74B06F"
)
