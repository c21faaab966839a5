package api

import (
	"encoding/json"
	"strings"
	"testing"

	"memories/internal/models"
	"memories/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostRequest(t *testing.T) {
	req := &PostRequest{Title: "  Trip ", Message: " sunny ", Tags: []string{" beach ", "", "sun"}}
	req.Normalize()
	require.NoError(t, Validate(req))
	assert.Equal(t, "Trip", req.Title)
	assert.Equal(t, []string{"beach", "sun"}, req.Tags)

	blank := &PostRequest{Title: "   ", Message: "body"}
	blank.Normalize()
	err := Validate(blank)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	assert.Equal(t, "title is required", err.Error())

	long := &PostRequest{Title: strings.Repeat("x", 201), Message: "m"}
	assert.Error(t, Validate(long))
}

func TestValidateRegisterRequest(t *testing.T) {
	ok := &RegisterRequest{Name: "Ana", Email: " Ana@Example.com ", Password: "secret1"}
	ok.Normalize()
	require.NoError(t, Validate(ok))
	assert.Equal(t, "ana@example.com", ok.Email)

	cases := map[string]RegisterRequest{
		"short name":     {Name: "A", Email: "a@example.com", Password: "secret1"},
		"bad email":      {Name: "Ana", Email: "not-an-email", Password: "secret1"},
		"short password": {Name: "Ana", Email: "a@example.com", Password: "123"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			req := req
			assert.True(t, utils.IsErrorCode(Validate(&req), utils.ErrInvalidInput))
		})
	}
}

func TestNewPostResponseResolvesReferences(t *testing.T) {
	post := &models.Post{
		ID:          "p1",
		Title:       "Trip",
		CreatorID:   "u1",
		CreatorName: "Old Name",
		Comments: []models.Comment{
			{ID: "c1", UserID: "u2", Text: "nice", Name: "Bo snapshot"},
			{ID: "c2", UserID: "gone", Text: "hello", Name: "Ghost", Avatar: "ghost.png"},
		},
	}
	users := map[string]*models.User{
		"u1": {ID: "u1", Name: "Ana", Avatar: "ana.png"},
		"u2": {ID: "u2", Name: "Bo"},
	}

	resp := NewPostResponse(post, users)
	assert.Equal(t, AuthorRef{ID: "u1", Name: "Ana", Avatar: "ana.png"}, resp.Creator)
	assert.Equal(t, "Old Name", resp.CreatorName)
	assert.Equal(t, AuthorRef{ID: "u2", Name: "Bo"}, resp.Comments[0].User)
	assert.Equal(t, AuthorRef{ID: "gone", Name: "Ghost", Avatar: "ghost.png"}, resp.Comments[1].User)
	assert.Equal(t, []string{}, resp.Likes)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "p1", raw["_id"])
	assert.Equal(t, "u1", raw["creator"].(map[string]interface{})["_id"])
}

func TestReferencedUserIDs(t *testing.T) {
	a := &models.Post{CreatorID: "u1", Comments: []models.Comment{{UserID: "u2"}, {UserID: "u1"}}}
	b := &models.Post{CreatorID: "u3"}
	assert.Equal(t, []string{"u1", "u2", "u3"}, ReferencedUserIDs(a, b))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 8))
	assert.Equal(t, 1, TotalPages(8, 8))
	assert.Equal(t, 2, TotalPages(9, 8))
	assert.Equal(t, 0, TotalPages(9, 0))
}
