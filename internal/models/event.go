package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a post mutation published to the activity engine.
type EventKind string

const (
	EventPostCreated    EventKind = "post.created"
	EventPostUpdated    EventKind = "post.updated"
	EventPostDeleted    EventKind = "post.deleted"
	EventPostLiked      EventKind = "post.liked"
	EventCommentAdded   EventKind = "comment.added"
	EventCommentRemoved EventKind = "comment.removed"
)

type PostEvent struct {
	ID        uuid.UUID `json:"id"`
	Kind      EventKind `json:"kind"`
	PostID    string    `json:"postId"`
	ActorID   string    `json:"actorId"`
	LikeCount int       `json:"likeCount,omitempty"`
	At        time.Time `json:"at"`
}

func NewPostEvent(kind EventKind, postID, actorID string) *PostEvent {
	return &PostEvent{
		ID:      uuid.New(),
		Kind:    kind,
		PostID:  postID,
		ActorID: actorID,
		At:      time.Now().UTC(),
	}
}
