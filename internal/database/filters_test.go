package database

import (
	"math"
	"testing"

	"memories/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(1, 8))
	assert.Equal(t, 0, pageOffset(-5, 8))
	assert.Equal(t, 16, pageOffset(3, 8))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt, 8))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt/8+2, 8))
	assert.Equal(t, math.MaxInt/8*8, pageOffset(math.MaxInt/8+1, 8))
}

func TestLiteralRegexEscapesInput(t *testing.T) {
	re := literalRegex("a.b*(c)")
	assert.Equal(t, `a\.b\*\(c\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestBuildListFilter(t *testing.T) {
	assert.Empty(t, buildListFilter(models.PostFilter{}))

	filter := buildListFilter(models.PostFilter{Tag: " trip ", CreatorID: "u1", Search: "beach"})
	assert.Equal(t, "trip", filter["tags"])
	assert.Equal(t, "u1", filter["creator"])

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"title": primitive.Regex{Pattern: "beach", Options: "i"}}, or[0])
	assert.Equal(t, bson.M{"message": primitive.Regex{Pattern: "beach", Options: "i"}}, or[1])
}

func TestBuildSearchFilter(t *testing.T) {
	assert.Empty(t, buildSearchFilter("  ", ""))

	filter := buildSearchFilter("sun", "")
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	assert.Equal(t, bson.M{"tags": primitive.Regex{Pattern: "sun", Options: "i"}}, or[2])
	assert.NotContains(t, filter, "tags")

	filter = buildSearchFilter("sun", "trip")
	assert.Equal(t, "trip", filter["tags"])
}

func TestToggleLikePipeline(t *testing.T) {
	pipeline := toggleLikePipeline("u1")
	require.Len(t, pipeline, 2)

	assert.Equal(t, "$set", pipeline[0][0].Key)
	assert.Equal(t, "$set", pipeline[1][0].Key)

	count := pipeline[1][0].Value.(bson.D)
	assert.Equal(t, "likeCount", count[0].Key)
	assert.Equal(t, bson.D{{Key: "$size", Value: "$likes"}}, count[0].Value)

	likes := pipeline[0][0].Value.(bson.D)
	assert.Equal(t, "likes", likes[0].Key)
	cond := likes[0].Value.(bson.D)[0]
	assert.Equal(t, "$cond", cond.Key)
	assert.Len(t, cond.Value.(bson.A), 3)
}

func TestPrependComment(t *testing.T) {
	doc := CommentDocument{ID: primitive.NewObjectID(), User: "u1", Text: "hi"}
	update := prependComment(doc)

	push := update["$push"].(bson.M)["comments"].(bson.M)
	assert.Equal(t, 0, push["$position"])
	assert.Equal(t, bson.A{doc}, push["$each"])
}

func TestPostDocumentRoundTrip(t *testing.T) {
	post := &models.Post{
		ID:        NewID(),
		Title:     "Trip",
		CreatorID: "u1",
		Likes:     []string{"u2", "u3"},
		Comments:  []models.Comment{{ID: NewID(), UserID: "u2", Text: "nice"}},
	}

	doc, err := PostToDocument(post)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.LikeCount)
	assert.Equal(t, []string{}, doc.Tags)

	back := DocumentToPost(doc)
	assert.Equal(t, post.ID, back.ID)
	assert.Equal(t, post.Comments[0].ID, back.Comments[0].ID)
	assert.Equal(t, 2, back.LikeCount)

	_, err = PostToDocument(&models.Post{ID: "nope"})
	assert.Error(t, err)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("not-an-id"))
}
