// internal/database/user_repository.go
package database

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             primitive.ObjectID `bson:"_id"`      // MongoDB primary key
	Name           string             `bson:"name"`     // Display name
	Email          string             `bson:"email"`    // Lower-cased, unique
	HashedPassword string             `bson:"password"` // bcrypt hash
	Role           models.Role        `bson:"role"`     // user or admin
	Avatar         string             `bson:"avatar,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"` // Account creation timestamp
}

func documentToUser(doc *UserDocument) *models.User {
	role := doc.Role
	if !role.Valid() {
		role = models.RoleUser
	}
	return &models.User{
		ID:             doc.ID.Hex(),
		Name:           doc.Name,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		Role:           role,
		Avatar:         doc.Avatar,
		CreatedAt:      doc.CreatedAt,
	}
}

// CreateUser inserts a new user. A taken email is reported as a duplicate.
func (m *MongoDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = normalizeEmail(user.Email)

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return utils.NewInvalidInputError("invalid user ID")
	}

	doc := UserDocument{
		ID:             oid,
		Name:           user.Name,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Role:           user.Role,
		Avatar:         user.Avatar,
		CreatedAt:      user.CreatedAt,
	}

	if _, err := m.Users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewAppError(utils.ErrDuplicate, "User already exists", err)
		}
		return utils.NewDatabaseError("failed to create user", err)
	}
	return nil
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.NewNotFoundError("User not found")
	}
	return m.findUser(ctx, bson.M{"_id": oid})
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": normalizeEmail(email)})
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to load user", err)
	}
	return documentToUser(&doc), nil
}

// GetUsersByIDs loads every user in ids in one query. Unknown and malformed
// ids are absent from the result.
func (m *MongoDB) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	users := make(map[string]*models.User, len(oids))
	if len(oids) == 0 {
		return users, nil
	}

	list, err := m.findUsers(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		users[u.ID] = u
	}
	return users, nil
}

// ListUsers returns every user, newest first.
func (m *MongoDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	return m.findUsers(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (m *MongoDB) findUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.User, error) {
	cursor, err := m.Users.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("failed to query users", err)
	}
	defer cursor.Close(ctx)

	users := make([]*models.User, 0)
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding user document: %v", err)
			continue
		}
		users = append(users, documentToUser(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewDatabaseError("cursor iteration failed", err)
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
