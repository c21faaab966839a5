package models

import (
	"time"
)

// Comment is owned by its parent Post and has no lifecycle of its own.
type Comment struct {
	ID        string
	UserID    string
	Text      string
	Name      string
	Avatar    string
	CreatedAt time.Time
}

// CanBeRemovedBy reports whether the given caller may delete the comment.
func (c *Comment) CanBeRemovedBy(userID string, role Role) bool {
	return c.UserID == userID || role == RoleAdmin
}
