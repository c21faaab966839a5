package models

import (
	"time"
)

// Post is a "memory": a titled message with optional media, tags, likes and
// an embedded, newest-first comment thread.
type Post struct {
	ID           string
	Title        string
	Message      string
	CreatorID    string
	CreatorName  string // snapshot taken when the post was created
	Tags         []string
	SelectedFile string
	LikeCount    int
	Likes        []string // user IDs, unique
	Comments     []Comment
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLike reports whether userID is in the post's likes.
func (p *Post) HasLike(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike flips userID's membership in Likes and recomputes LikeCount.
// It returns true when the post is liked after the call.
func (p *Post) ToggleLike(userID string) bool {
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			p.LikeCount = len(p.Likes)
			return false
		}
	}
	p.Likes = append(p.Likes, userID)
	p.LikeCount = len(p.Likes)
	return true
}

// FindComment returns the embedded comment with the given ID.
func (p *Post) FindComment(commentID string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// RemoveComment drops the comment with the given ID, reporting whether it existed.
func (p *Post) RemoveComment(commentID string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// PostUpdate carries the fields replaced by an edit.
type PostUpdate struct {
	Title        string
	Message      string
	Tags         []string
	SelectedFile string
}

// PostFilter narrows the paginated post listing.
type PostFilter struct {
	Tag       string
	Search    string
	CreatorID string
}

// Stats are the store-wide totals shown on the admin dashboard.
type Stats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalPosts    int64 `json:"totalPosts"`
	TotalComments int64 `json:"totalComments"`
}
