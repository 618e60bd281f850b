package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BorisDmv/posts-api/internal/models"
)

const postsTableSQL = `CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    author TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

const postsIndexSQL = `CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC)`

const postColumns = `id, title, content, author, created_at, updated_at`

// PostgresStore keeps posts as rows of a single table. Ids are ObjectID hex
// strings minted here so they share the Mongo id format.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the posts table and its index if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postsTableSQL); err != nil {
		return pgErr("create posts table", err)
	}
	if _, err := s.pool.Exec(ctx, postsIndexSQL); err != nil {
		return pgErr("create posts index", err)
	}
	return nil
}

// Truncate removes every post.
func (s *PostgresStore) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE posts"); err != nil {
		return pgErr("truncate posts", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`
	return s.query(ctx, "list posts", query)
}

func (s *PostgresStore) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE title ILIKE '%' || $1 || '%'
		   OR content ILIKE '%' || $1 || '%'
	`
	return s.query(ctx, "search posts", query, escapeLike(term))
}

func (s *PostgresStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, pgErr("get post", err)
	}
	return post, nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, in models.PostInput, now time.Time) (*models.Post, error) {
	const query = `
		INSERT INTO posts (id, title, content, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + postColumns

	id := primitive.NewObjectID().Hex()
	post, err := scanPost(s.pool.QueryRow(ctx, query, id, in.Title, in.Content, in.Author, now))
	if err != nil {
		return nil, pgErr("create post", err)
	}
	return post, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, id string, patch models.PostPatch, now time.Time) (*models.Post, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}
	// COALESCE keeps the stored value for fields the patch leaves out.
	// updated_at always lands at least a millisecond after created_at.
	const query = `
		UPDATE posts
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    author = COALESCE($4, author),
		    updated_at = GREATEST($5::timestamptz, created_at + interval '1 millisecond')
		WHERE id = $1
		RETURNING ` + postColumns

	post, err := scanPost(s.pool.QueryRow(ctx, query, id, patch.Title, patch.Content, patch.Author, now))
	if err != nil {
		return nil, pgErr("update post", err)
	}
	return post, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrInvalidID
	}
	const query = `DELETE FROM posts WHERE id = $1 RETURNING ` + postColumns

	post, err := scanPost(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, pgErr("delete post", err)
	}
	return post, nil
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]models.Post, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, pgErr(op, err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, pgErr(op, err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(op, err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Author,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	post.CreatedAt = post.CreatedAt.UTC()
	post.UpdatedAt = post.UpdatedAt.UTC()
	return &post, nil
}

// escapeLike makes term match literally inside an ILIKE pattern.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func pgErr(op string, err error) error {
	var connectErr *pgconn.ConnectError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case pgconn.Timeout(err), errors.As(err, &connectErr):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
