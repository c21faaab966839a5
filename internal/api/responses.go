package api

import (
	"math"
	"time"

	"memories/internal/engine"
	"memories/internal/models"
)

// AuthorRef is a user reference expanded for display.
type AuthorRef struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type CommentResponse struct {
	ID        string    `json:"_id"`
	User      AuthorRef `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostResponse struct {
	ID           string            `json:"_id"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Creator      AuthorRef         `json:"creator"`
	CreatorName  string            `json:"creatorName"`
	Tags         []string          `json:"tags"`
	SelectedFile string            `json:"selectedFile,omitempty"`
	LikeCount    int               `json:"likeCount"`
	Likes        []string          `json:"likes"`
	Comments     []CommentResponse `json:"comments"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

type PostPage struct {
	Posts       []PostResponse `json:"posts"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Avatar    string      `json:"avatar,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatsResponse struct {
	models.Stats
	Activity engine.ActivityCounts `json:"activity"`
}

type HealthResponse struct {
	Status     string                `json:"status"`
	PostCount  int64                 `json:"postCount"`
	Activity   engine.ActivityCounts `json:"activity"`
	Clients    int                   `json:"clients"`
	Uptime     float64               `json:"uptimeSeconds"`
	ServerTime time.Time             `json:"serverTime"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// ReferencedUserIDs lists every user a set of posts points at: creators and
// comment authors, without duplicates.
func ReferencedUserIDs(posts ...*models.Post) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		add(p.CreatorID)
		for _, c := range p.Comments {
			add(c.UserID)
		}
	}
	return ids
}

// NewPostResponse renders a post with its references resolved against
// users. A reference missing from users falls back to the snapshot stored
// on the post.
func NewPostResponse(p *models.Post, users map[string]*models.User) PostResponse {
	resp := PostResponse{
		ID:           p.ID,
		Title:        p.Title,
		Message:      p.Message,
		Creator:      authorRef(p.CreatorID, p.CreatorName, "", users),
		CreatorName:  p.CreatorName,
		Tags:         nonNil(p.Tags),
		SelectedFile: p.SelectedFile,
		LikeCount:    p.LikeCount,
		Likes:        nonNil(p.Likes),
		Comments:     make([]CommentResponse, 0, len(p.Comments)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for _, c := range p.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:        c.ID,
			User:      authorRef(c.UserID, c.Name, c.Avatar, users),
			Text:      c.Text,
			Name:      c.Name,
			Avatar:    c.Avatar,
			CreatedAt: c.CreatedAt,
		})
	}
	return resp
}

func NewPostResponses(posts []*models.Post, users map[string]*models.User) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p, users))
	}
	return out
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

func authorRef(id, name, avatar string, users map[string]*models.User) AuthorRef {
	if u, ok := users[id]; ok {
		return AuthorRef{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
	}
	return AuthorRef{ID: id, Name: name, Avatar: avatar}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
