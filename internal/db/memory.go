package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BorisDmv/posts-api/internal/models"
)

// MemoryStore keeps posts in process memory. It mints ObjectID-shaped ids so
// the same id rules apply as with the Mongo store.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[string]models.Post
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[string]models.Post)}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// newest insert first, then a stable sort keeps that order for equal timestamps
	out := make([]models.Post, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.posts[s.order[i]])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0)
	for _, id := range s.order {
		post := s.posts[id]
		if strings.Contains(strings.ToLower(post.Title), needle) ||
			strings.Contains(strings.ToLower(post.Content), needle) {
			out = append(out, post)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, in models.PostInput, now time.Time) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	post := models.Post{
		ID:        primitive.NewObjectID().Hex(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    in.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.posts[post.ID] = post
	s.order = append(s.order, post.ID)
	s.mu.Unlock()

	return &post, nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, id string, patch models.PostPatch, now time.Time) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&post)
	if !now.After(post.CreatedAt) {
		now = post.CreatedAt.Add(time.Millisecond)
	}
	post.UpdatedAt = now
	s.posts[id] = post
	return &post, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.posts, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return &post, nil
}
