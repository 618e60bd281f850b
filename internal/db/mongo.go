package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/BorisDmv/posts-api/internal/models"
)

const (
	postsCollection = "posts"
	defaultDatabase = "blogdb"
)

// postDocument is the shape of a post in the posts collection.
type postDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Author    string             `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d postDocument) toModel() models.Post {
	return models.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Author:    d.Author,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	posts  *mongo.Collection
}

// NewMongoStore connects to uri and pings the primary. The database name is
// taken from the uri path.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = defaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	database := client.Database(dbName)
	return &MongoStore{
		client: client,
		db:     database,
		posts:  database.Collection(postsCollection),
	}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the index backing newest-first listing.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return mongoErr("create createdAt index", err)
	}
	return nil
}

// Drop removes the whole database.
func (s *MongoStore) Drop(ctx context.Context) error {
	if err := s.db.Drop(ctx); err != nil {
		return mongoErr("drop database", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.find(ctx, "list posts", bson.D{}, opts)
}

func (s *MongoStore) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "title", Value: pattern}},
		bson.D{{Key: "content", Value: pattern}},
	}}}
	return s.find(ctx, "search posts", filter)
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var doc postDocument
	if err := s.posts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mongoErr("get post", err)
	}
	post := doc.toModel()
	return &post, nil
}

func (s *MongoStore) CreatePost(ctx context.Context, in models.PostInput, now time.Time) (*models.Post, error) {
	doc := postDocument{
		ID:        primitive.NewObjectID(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    in.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return nil, mongoErr("create post", err)
	}
	post := doc.toModel()
	return &post, nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, id string, patch models.PostPatch, now time.Time) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	// Pipeline form so updatedAt can be compared against the stored createdAt.
	// Supplied values go through $literal so a leading "$" is not read as a
	// field path.
	set := bson.D{{Key: "updatedAt", Value: bson.D{{Key: "$max", Value: bson.A{
		now,
		bson.D{{Key: "$add", Value: bson.A{"$createdAt", 1}}},
	}}}}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: literal(*patch.Title)})
	}
	if patch.Content != nil {
		set = append(set, bson.E{Key: "content", Value: literal(*patch.Content)})
	}
	if patch.Author != nil {
		set = append(set, bson.E{Key: "author", Value: literal(*patch.Author)})
	}
	update := mongo.Pipeline{{{Key: "$set", Value: set}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDocument
	err = s.posts.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if err != nil {
		return nil, mongoErr("update post", err)
	}
	post := doc.toModel()
	return &post, nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var doc postDocument
	if err := s.posts.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, mongoErr("delete post", err)
	}
	post := doc.toModel()
	return &post, nil
}

func (s *MongoStore) find(ctx context.Context, op string, filter bson.D, opts ...*options.FindOptions) ([]models.Post, error) {
	cursor, err := s.posts.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mongoErr(op, err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongoErr(op, err)
	}

	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, doc.toModel())
	}
	return posts, nil
}

// mongoErr maps driver errors onto the package sentinels.
func literal(v string) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

func mongoErr(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
