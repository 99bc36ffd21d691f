package bookmarkstore_test

import (
	"testing"
	"time"

	bookmarkstore "github.com/markhold/markhold/internal/app/store/bookmarks"
	"github.com/markhold/markhold/internal/domain/models"
	"github.com/markhold/markhold/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_AssignsIDAndType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookmarkstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, models.Bookmark{
		UserID:  primitive.NewObjectID(),
		GroupID: primitive.NewObjectID(),
		Title:   "Example",
		URL:     "https://example.com/page",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if b.ID.IsZero() {
		t.Error("Create did not assign an ID")
	}
	if b.Type != models.BookmarkTypeLink {
		t.Errorf("type: got %q, want %q", b.Type, models.BookmarkTypeLink)
	}
	if b.CreatedAt.IsZero() {
		t.Error("Create did not assign CreatedAt")
	}
}

func TestCreate_RepeatedURLIsAdditive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookmarkstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if _, err := store.Create(ctx, models.Bookmark{
			UserID: userID, GroupID: groupID,
			Title: "Same", URL: "https://example.com/same",
		}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	list, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	// Capture is intentionally additive: saving a URL twice keeps both.
	if len(list) != 2 {
		t.Errorf("got %d bookmarks, want 2", len(list))
	}
}

func TestListByGroup_ScopedToUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookmarkstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	groupID := primitive.NewObjectID()

	fixtures.CreateBookmark(ctx, owner, groupID, "Mine", "https://example.com/a")
	fixtures.CreateBookmark(ctx, other, groupID, "Theirs", "https://example.com/b")

	list, err := store.ListByGroup(ctx, owner, groupID)
	if err != nil {
		t.Fatalf("ListByGroup: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Mine" {
		t.Errorf("got %d bookmarks (%v), want only the owner's", len(list), list)
	}
}

func TestListByUser_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookmarkstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	for _, title := range []string{"older", "newer"} {
		if _, err := store.Create(ctx, models.Bookmark{
			UserID: userID, GroupID: groupID, Title: title, URL: "https://example.com/" + title,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	list, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d bookmarks, want 2", len(list))
	}
	if list[0].Title != "newer" {
		t.Errorf("first bookmark: got %q, want newest", list[0].Title)
	}
}

func TestDelete_OwnerScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookmarkstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	b := fixtures.CreateBookmark(ctx, owner, primitive.NewObjectID(), "Mine", "https://example.com")

	if n, err := store.Delete(ctx, primitive.NewObjectID(), b.ID); err != nil || n != 0 {
		t.Errorf("delete by non-owner: n=%d err=%v, want 0 deletions", n, err)
	}
	if n, err := store.Delete(ctx, owner, b.ID); err != nil || n != 1 {
		t.Errorf("delete by owner: n=%d err=%v, want 1 deletion", n, err)
	}
}
