package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BorisDmv/posts-api/internal/models"
)

// postStore is the method set every store driver offers.
type postStore interface {
	Ping(ctx context.Context) error
	ListPosts(ctx context.Context) ([]models.Post, error)
	SearchPosts(ctx context.Context, term string) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput, now time.Time) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, patch models.PostPatch, now time.Time) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (*models.Post, error)
}

var (
	_ postStore = (*MemoryStore)(nil)
	_ postStore = (*MongoStore)(nil)
	_ postStore = (*PostgresStore)(nil)
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func ids(list []models.Post) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

// runStoreContract runs the behaviour every driver must share. newStore must
// return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) postStore) {
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(ctx))
	})

	t.Run("create then get echoes input", func(t *testing.T) {
		store := newStore(t)
		in := models.PostInput{Title: "A", Content: "B", Author: "C"}

		created, err := store.CreatePost(ctx, in, baseTime)
		require.NoError(t, err)
		assert.True(t, primitive.IsValidObjectID(created.ID), "id %q", created.ID)
		assert.Equal(t, "A", created.Title)
		assert.Equal(t, "B", created.Content)
		assert.Equal(t, "C", created.Author)
		assert.True(t, baseTime.Equal(created.CreatedAt))
		assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

		got, err := store.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Title, got.Title)
		assert.Equal(t, created.Content, got.Content)
		assert.Equal(t, created.Author, got.Author)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("ids are unique", func(t *testing.T) {
		store := newStore(t)
		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			p, err := store.CreatePost(ctx, models.PostInput{Title: "t", Content: "c", Author: "a"}, baseTime)
			require.NoError(t, err)
			assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
		}
	})

	t.Run("list empty", func(t *testing.T) {
		list, err := newStore(t).ListPosts(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("list newest first", func(t *testing.T) {
		store := newStore(t)
		var want []string
		for i := 0; i < 3; i++ {
			p, err := store.CreatePost(ctx, models.PostInput{Title: "t", Content: "c", Author: "a"}, baseTime.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
			want = append([]string{p.ID}, want...)
		}

		list, err := store.ListPosts(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, ids(list))
	})

	t.Run("search matches title or content ignoring case", func(t *testing.T) {
		store := newStore(t)
		inTitle, err := store.CreatePost(ctx, models.PostInput{Title: "Learning GoLang", Content: "basics", Author: "x"}, baseTime)
		require.NoError(t, err)
		inContent, err := store.CreatePost(ctx, models.PostInput{Title: "Notes", Content: "why golang wins", Author: "x"}, baseTime)
		require.NoError(t, err)
		_, err = store.CreatePost(ctx, models.PostInput{Title: "Rust", Content: "borrowing", Author: "golang fan"}, baseTime)
		require.NoError(t, err)

		found, err := store.SearchPosts(ctx, "GOLANG")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{inTitle.ID, inContent.ID}, ids(found))
	})

	t.Run("search term is literal", func(t *testing.T) {
		store := newStore(t)
		literal, err := store.CreatePost(ctx, models.PostInput{Title: "save 50% now", Content: "a.b", Author: "x"}, baseTime)
		require.NoError(t, err)
		_, err = store.CreatePost(ctx, models.PostInput{Title: "save 500 now", Content: "axb", Author: "x"}, baseTime)
		require.NoError(t, err)

		found, err := store.SearchPosts(ctx, "50%")
		require.NoError(t, err)
		assert.Equal(t, []string{literal.ID}, ids(found))

		found, err = store.SearchPosts(ctx, "a.b")
		require.NoError(t, err)
		assert.Equal(t, []string{literal.ID}, ids(found))
	})

	t.Run("search without matches is empty", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreatePost(ctx, models.PostInput{Title: "t", Content: "c", Author: "a"}, baseTime)
		require.NoError(t, err)

		found, err := store.SearchPosts(ctx, "nothing here")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		store := newStore(t)
		missing := primitive.NewObjectID().Hex()

		_, err := store.GetPost(ctx, missing)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.UpdatePost(ctx, missing, models.PostPatch{Title: strPtr("x")}, baseTime)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.DeletePost(ctx, missing)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.GetPost(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
		_, err = store.UpdatePost(ctx, "123", models.PostPatch{}, baseTime)
		assert.ErrorIs(t, err, ErrInvalidID)
		_, err = store.DeletePost(ctx, "zzzzzzzzzzzzzzzzzzzzzzzz")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("update applies supplied fields only", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreatePost(ctx, models.PostInput{Title: "A", Content: "B", Author: "C"}, baseTime)
		require.NoError(t, err)

		later := baseTime.Add(time.Hour)
		updated, err := store.UpdatePost(ctx, created.ID, models.PostPatch{Title: strPtr("X")}, later)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "X", updated.Title)
		assert.Equal(t, "B", updated.Content)
		assert.Equal(t, "C", updated.Author)
		assert.True(t, baseTime.Equal(updated.CreatedAt))
		assert.True(t, later.Equal(updated.UpdatedAt))

		got, err := store.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "X", got.Title)
		assert.True(t, later.Equal(got.UpdatedAt))
	})

	t.Run("update keeps updatedAt after createdAt", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreatePost(ctx, models.PostInput{Title: "A", Content: "B", Author: "C"}, baseTime)
		require.NoError(t, err)
		floor := baseTime.Add(time.Millisecond)

		for _, now := range []time.Time{baseTime, baseTime.Add(-time.Hour)} {
			updated, err := store.UpdatePost(ctx, created.ID, models.PostPatch{Title: strPtr("$title")}, now)
			require.NoError(t, err)
			assert.Equal(t, "$title", updated.Title)
			assert.True(t, baseTime.Equal(updated.CreatedAt))
			assert.True(t, updated.UpdatedAt.After(updated.CreatedAt), "now=%s", now)
			assert.True(t, floor.Equal(updated.UpdatedAt), "now=%s got=%s", now, updated.UpdatedAt)
		}
	})

	t.Run("delete returns prior state", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreatePost(ctx, models.PostInput{Title: "A", Content: "B", Author: "C"}, baseTime)
		require.NoError(t, err)

		deleted, err := store.DeletePost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)
		assert.Equal(t, "A", deleted.Title)

		_, err = store.GetPost(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.DeletePost(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := store.ListPosts(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
