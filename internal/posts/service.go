package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/BorisDmv/posts-api/internal/db"
	"github.com/BorisDmv/posts-api/internal/models"
)

const (
	messageNotFound     = "post not found"
	messageListFailed   = "failed to load posts"
	messageSearchFailed = "failed to search posts"
	messageGetFailed    = "failed to load post"
	messageCreateFailed = "failed to create post"
	messageUpdateFailed = "failed to update post"
	messageDeleteFailed = "failed to delete post"
)

// Store is the document store capability the service needs. Implementations
// report db.ErrNotFound, db.ErrInvalidID and db.ErrUnavailable. UpdatePost
// stores updatedAt as now or createdAt plus one millisecond, whichever is later.
type Store interface {
	Ping(ctx context.Context) error
	ListPosts(ctx context.Context) ([]models.Post, error)
	SearchPosts(ctx context.Context, term string) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput, now time.Time) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, patch models.PostPatch, now time.Time) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (*models.Post, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces the clock used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the store answers.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return s.storeError("ping", "store unavailable", err)
	}
	return nil
}

// ListPosts returns every post, newest first. An empty collection is not an
// error.
func (s *Service) ListPosts(ctx context.Context) ([]models.Post, error) {
	list, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, s.storeError("list posts", messageListFailed, err)
	}
	if list == nil {
		list = []models.Post{}
	}
	return list, nil
}

// SearchPosts returns posts whose title or content contains the query,
// ignoring case. No match is reported as KindNotFound.
func (s *Service) SearchPosts(ctx context.Context, rawQuery string) ([]models.Post, error) {
	term, err := ValidateSearchQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	found, err := s.store.SearchPosts(ctx, term)
	if err != nil {
		return nil, s.storeError("search posts", messageSearchFailed, err)
	}
	if len(found) == 0 {
		return nil, newError(KindNotFound, fmt.Sprintf("no posts found for term %q", term), nil)
	}
	return found, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, s.storeError("get post", messageGetFailed, err)
	}
	return post, nil
}

func (s *Service) CreatePost(ctx context.Context, req PostRequest) (*models.Post, error) {
	in, err := ValidateCreate(req)
	if err != nil {
		return nil, err
	}
	post, err := s.store.CreatePost(ctx, in, s.timestamp())
	if err != nil {
		return nil, s.storeError("create post", messageCreateFailed, err)
	}
	return post, nil
}

// UpdatePost applies the supplied fields to the post and refreshes
// updatedAt. A supplied field may not be blank.
func (s *Service) UpdatePost(ctx context.Context, id string, req PostRequest) (*models.Post, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	patch := ValidateUpdate(req)
	if blank := blankFields(patch); len(blank) > 0 {
		return nil, &Error{
			Kind:    KindValidationFailed,
			Message: "fields may not be blank: " + strings.Join(blank, ", "),
			Fields:  blank,
		}
	}

	post, err := s.store.UpdatePost(ctx, id, patch, s.timestamp())
	if err != nil {
		return nil, s.storeError("update post", messageUpdateFailed, err)
	}
	return post, nil
}

// DeletePost removes the post and returns its last state.
func (s *Service) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	post, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return nil, s.storeError("delete post", messageDeleteFailed, err)
	}
	return post, nil
}

// timestamp is millisecond precision, the finest the Mongo store keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) storeError(op, message string, err error) *Error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return newError(KindNotFound, messageNotFound, err)
	case errors.Is(err, db.ErrInvalidID):
		return newError(KindInvalidID, messageInvalidID, err)
	case errors.Is(err, db.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Printf("%s: store unavailable: %v", op, err)
		return newError(KindStoreUnavailable, message, err)
	default:
		log.Printf("%s: %v", op, err)
		return newError(KindStoreError, message, err)
	}
}

func blankFields(patch models.PostPatch) []string {
	var blank []string
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		blank = append(blank, "title")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		blank = append(blank, "content")
	}
	if patch.Author != nil && strings.TrimSpace(*patch.Author) == "" {
		blank = append(blank, "author")
	}
	return blank
}
