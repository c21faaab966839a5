package database

import (
	"context"
	"fmt"
	"log"
	"math"

	"memories/internal/config"
	"memories/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchLimit caps the number of posts returned by a search.
const SearchLimit = 20

// Store defines the common interface for the document store. Both the MongoDB
// and the Badger adapters implement it.
type Store interface {
	// Connection
	Close(ctx context.Context) error
	Ping(ctx context.Context) error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Post methods
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter, page, pageSize int) ([]*models.Post, int64, error)
	SearchPosts(ctx context.Context, query, tag string, limit int) ([]*models.Post, error)
	UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error)

	// Comment methods
	AddComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID string) (*models.Post, error)

	CountStats(ctx context.Context) (*models.Stats, error)
}

// Open connects the adapter selected by cfg.Type.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Type {
	case config.DatabaseMongo:
		return NewMongoDB(ctx, cfg.URI, cfg.Name)
	case config.DatabaseBadger:
		if cfg.BadgerPath == "" {
			log.Printf("Using in-memory Badger store; data is lost on exit")
		}
		return NewBadgerDB(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

// NewID returns a fresh identifier. Both adapters use ObjectID hex strings so
// ids look the same whichever store is configured.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id could have been produced by NewID.
func ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// pageOffset is the number of posts before page. Pages too large to address
// saturate at math.MaxInt, which lies past the end of any listing.
func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
