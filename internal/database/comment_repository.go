package database

import (
	"context"
	"log"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentDocument represents a comment embedded in a post document
type CommentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      string             `bson:"user"`
	Text      string             `bson:"text"`
	Name      string             `bson:"name"`
	Avatar    string             `bson:"avatar,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func CommentToDocument(comment *models.Comment) (*CommentDocument, error) {
	id, err := primitive.ObjectIDFromHex(comment.ID)
	if err != nil {
		return nil, utils.NewInvalidInputError("invalid comment ID")
	}
	return &CommentDocument{
		ID:        id,
		User:      comment.UserID,
		Text:      comment.Text,
		Name:      comment.Name,
		Avatar:    comment.Avatar,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func DocumentToComment(doc *CommentDocument) models.Comment {
	return models.Comment{
		ID:        doc.ID.Hex(),
		UserID:    doc.User,
		Text:      doc.Text,
		Name:      doc.Name,
		Avatar:    doc.Avatar,
		CreatedAt: doc.CreatedAt,
	}
}

// AddComment prepends the comment to the post's thread.
func (m *MongoDB) AddComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error) {
	if comment.ID == "" {
		comment.ID = NewID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	doc, err := CommentToDocument(comment)
	if err != nil {
		return nil, err
	}

	post, err := m.findOneAndUpdate(ctx, postID, prependComment(*doc))
	if err != nil {
		return nil, err
	}
	log.Printf("Added comment %s to post %s", comment.ID, postID)
	return post, nil
}

// RemoveComment pulls a comment from the post's thread. A comment that is
// not under the post is reported as not found.
func (m *MongoDB) RemoveComment(ctx context.Context, postID, commentID string) (*models.Post, error) {
	pid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, utils.NewNotFoundError("Post not found")
	}
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, utils.NewNotFoundError("Comment not found")
	}

	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": pid},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": cid}}},
	)
	if err != nil {
		return nil, utils.NewDatabaseError("failed to remove comment", err)
	}
	if result.MatchedCount == 0 {
		return nil, utils.NewNotFoundError("Post not found")
	}
	if result.ModifiedCount == 0 {
		return nil, utils.NewNotFoundError("Comment not found")
	}

	return m.GetPost(ctx, postID)
}
