// internal/database/post_repository.go
package database

import (
	"context"
	"errors"
	"log"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Title        string             `bson:"title"`
	Message      string             `bson:"message"`
	Creator      string             `bson:"creator"`
	Name         string             `bson:"creatorName"`
	Tags         []string           `bson:"tags"`
	SelectedFile string             `bson:"selectedFile,omitempty"`
	LikeCount    int                `bson:"likeCount"`
	Likes        []string           `bson:"likes"`
	Comments     []CommentDocument  `bson:"comments"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// PostToDocument converts a Post model to a MongoDB document.
func PostToDocument(post *models.Post) (*PostDocument, error) {
	id, err := primitive.ObjectIDFromHex(post.ID)
	if err != nil {
		return nil, utils.NewInvalidInputError("invalid post ID")
	}

	doc := &PostDocument{
		ID:           id,
		Title:        post.Title,
		Message:      post.Message,
		Creator:      post.CreatorID,
		Name:         post.CreatorName,
		Tags:         nonNil(post.Tags),
		SelectedFile: post.SelectedFile,
		LikeCount:    len(post.Likes),
		Likes:        nonNil(post.Likes),
		Comments:     make([]CommentDocument, 0, len(post.Comments)),
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
	for i := range post.Comments {
		c, err := CommentToDocument(&post.Comments[i])
		if err != nil {
			return nil, err
		}
		doc.Comments = append(doc.Comments, *c)
	}
	return doc, nil
}

// DocumentToPost converts a MongoDB document to a Post model.
func DocumentToPost(doc *PostDocument) *models.Post {
	post := &models.Post{
		ID:           doc.ID.Hex(),
		Title:        doc.Title,
		Message:      doc.Message,
		CreatorID:    doc.Creator,
		CreatorName:  doc.Name,
		Tags:         nonNil(doc.Tags),
		SelectedFile: doc.SelectedFile,
		LikeCount:    doc.LikeCount,
		Likes:        nonNil(doc.Likes),
		Comments:     make([]models.Comment, 0, len(doc.Comments)),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	for i := range doc.Comments {
		post.Comments = append(post.Comments, DocumentToComment(&doc.Comments[i]))
	}
	return post
}

// CreatePost inserts a new post, assigning its ID and timestamps when unset.
func (m *MongoDB) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = NewID()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = post.CreatedAt
	post.LikeCount = len(post.Likes)

	doc, err := PostToDocument(post)
	if err != nil {
		return err
	}
	if _, err := m.Posts.InsertOne(ctx, doc); err != nil {
		return utils.NewDatabaseError("failed to create post", err)
	}
	return nil
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.NewNotFoundError("Post not found")
	}

	var doc PostDocument
	err = m.Posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to load post", err)
	}
	return DocumentToPost(&doc), nil
}

// ListPosts returns one page of posts, newest first, plus the total number of
// posts matching the filter.
func (m *MongoDB) ListPosts(ctx context.Context, f models.PostFilter, page, pageSize int) ([]*models.Post, int64, error) {
	filter := buildListFilter(f)

	total, err := m.Posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, utils.NewDatabaseError("failed to count posts", err)
	}

	offset := pageOffset(page, pageSize)
	if int64(offset) >= total {
		return []*models.Post{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(pageSize))

	posts, err := m.findPosts(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// SearchPosts finds posts whose title, message or tags contain query.
func (m *MongoDB) SearchPosts(ctx context.Context, query, tag string, limit int) ([]*models.Post, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	return m.findPosts(ctx, buildSearchFilter(query, tag), opts)
}

func (m *MongoDB) findPosts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Post, error) {
	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("database query failed", err)
	}
	defer cursor.Close(ctx)

	posts := make([]*models.Post, 0)
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding post document: %v", err)
			continue
		}
		posts = append(posts, DocumentToPost(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewDatabaseError("cursor iteration failed", err)
	}
	return posts, nil
}

// UpdatePost replaces the editable fields and bumps updatedAt.
func (m *MongoDB) UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	return m.findOneAndUpdate(ctx, id, bson.M{
		"$set": bson.M{
			"title":        update.Title,
			"message":      update.Message,
			"tags":         nonNil(update.Tags),
			"selectedFile": update.SelectedFile,
			"updatedAt":    time.Now().UTC(),
		},
	})
}

// DeletePost removes a post together with its embedded comments.
func (m *MongoDB) DeletePost(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return utils.NewNotFoundError("Post not found")
	}

	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return utils.NewDatabaseError("failed to delete post", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("Post not found")
	}
	return nil
}

// ToggleLike flips userID's like in a single pipeline update.
func (m *MongoDB) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return m.findOneAndUpdate(ctx, postID, toggleLikePipeline(userID))
}

// findOneAndUpdate applies update to the post and returns the new version.
func (m *MongoDB) findOneAndUpdate(ctx context.Context, id string, update interface{}) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.NewNotFoundError("Post not found")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc PostDocument
	err = m.Posts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to update post", err)
	}
	return DocumentToPost(&doc), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
