// internal/domain/models/bookmark.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bookmark type values. Only "link" is produced today; the field exists so
// other capture types (notes, snippets) can share the collection later.
const BookmarkTypeLink = "link"

// Bookmark is a saved URL inside a group. URL is stored in normalized form
// (see system/normalize). Favicon is best-effort and may be nil when
// metadata enrichment found nothing.
type Bookmark struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
	Title   string             `bson:"title" json:"title"`
	URL     string             `bson:"url" json:"url"`
	Favicon *string            `bson:"favicon,omitempty" json:"favicon,omitempty"`
	Type    string             `bson:"type" json:"type"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
