package service

import (
	"context"
	"strings"
	"time"

	"memories/internal/auth"
	"memories/internal/database"
	"memories/internal/models"
	"memories/internal/utils"
)

// EventSink receives post activity. Publishing must not block.
type EventSink interface {
	Publish(event *models.PostEvent)
}

type PostService struct {
	store    database.Store
	events   EventSink
	metrics  *utils.MetricsCollector
	pageSize int
}

func NewPostService(store database.Store, events EventSink, metrics *utils.MetricsCollector, pageSize int) *PostService {
	if pageSize <= 0 {
		pageSize = 8
	}
	return &PostService{store: store, events: events, metrics: metrics, pageSize: pageSize}
}

// PageSize is the fixed number of posts per listing page.
func (s *PostService) PageSize() int {
	return s.pageSize
}

// List returns one page of posts, the total match count and the page that
// was actually served.
func (s *PostService) List(ctx context.Context, filter models.PostFilter, page int) ([]*models.Post, int64, int, error) {
	defer s.observe("posts.list", time.Now())

	if page < 1 {
		page = 1
	}
	posts, total, err := s.store.ListPosts(ctx, filter, page, s.pageSize)
	if err != nil {
		return nil, 0, 0, err
	}
	return posts, total, page, nil
}

func (s *PostService) Search(ctx context.Context, query, tag string) ([]*models.Post, error) {
	defer s.observe("posts.search", time.Now())
	return s.store.SearchPosts(ctx, query, tag, database.SearchLimit)
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	defer s.observe("posts.get", time.Now())
	return s.store.GetPost(ctx, id)
}

// Create stores a new post authored by the caller.
func (s *PostService) Create(ctx context.Context, caller auth.Identity, input models.PostUpdate) (*models.Post, error) {
	defer s.observe("posts.create", time.Now())

	if err := validatePost(&input); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:        input.Title,
		Message:      input.Message,
		CreatorID:    caller.UserID,
		CreatorName:  caller.Name,
		Tags:         input.Tags,
		SelectedFile: input.SelectedFile,
		Likes:        []string{},
		Comments:     []models.Comment{},
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.publish(models.EventPostCreated, post, caller)
	return post, nil
}

// Update replaces the editable fields. Ownership is checked by the caller's
// route gate.
func (s *PostService) Update(ctx context.Context, caller auth.Identity, id string, input models.PostUpdate) (*models.Post, error) {
	defer s.observe("posts.update", time.Now())

	if err := validatePost(&input); err != nil {
		return nil, err
	}
	post, err := s.store.UpdatePost(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.publish(models.EventPostUpdated, post, caller)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	defer s.observe("posts.delete", time.Now())

	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.publish(models.EventPostDeleted, &models.Post{ID: id}, caller)
	return nil
}

// ToggleLike flips the caller's like on a post.
func (s *PostService) ToggleLike(ctx context.Context, caller auth.Identity, id string) (*models.Post, error) {
	defer s.observe("posts.like", time.Now())

	post, err := s.store.ToggleLike(ctx, id, caller.UserID)
	if err != nil {
		return nil, err
	}
	s.publish(models.EventPostLiked, post, caller)
	return post, nil
}

// AddComment prepends a comment by the caller. The author's name and avatar
// are snapshotted from their profile.
func (s *PostService) AddComment(ctx context.Context, caller auth.Identity, postID, text string) (*models.Post, error) {
	defer s.observe("comments.add", time.Now())

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.NewInvalidInputError("text is required")
	}

	comment := &models.Comment{UserID: caller.UserID, Text: text, Name: caller.Name}
	if user, err := s.store.GetUser(ctx, caller.UserID); err == nil {
		comment.Name = user.Name
		comment.Avatar = user.Avatar
	} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, err
	}

	post, err := s.store.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}
	s.publish(models.EventCommentAdded, post, caller)
	return post, nil
}

// RemoveComment deletes a comment when the caller wrote it or is an admin.
func (s *PostService) RemoveComment(ctx context.Context, caller auth.Identity, postID, commentID string) (*models.Post, error) {
	defer s.observe("comments.remove", time.Now())

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment, ok := post.FindComment(commentID)
	if !ok {
		return nil, utils.NewNotFoundError("Comment not found")
	}
	if !comment.CanBeRemovedBy(caller.UserID, caller.Role) {
		return nil, utils.NewForbiddenError("Not authorized to delete this comment")
	}

	post, err = s.store.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	s.publish(models.EventCommentRemoved, post, caller)
	return post, nil
}

// CreatorOf returns the author of a post, for ownership checks.
func (s *PostService) CreatorOf(ctx context.Context, id string) (string, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return "", err
	}
	return post.CreatorID, nil
}

func (s *PostService) Stats(ctx context.Context) (*models.Stats, error) {
	defer s.observe("admin.stats", time.Now())
	return s.store.CountStats(ctx)
}

func (s *PostService) publish(kind models.EventKind, post *models.Post, caller auth.Identity) {
	if s.events == nil {
		return
	}
	event := models.NewPostEvent(kind, post.ID, caller.UserID)
	if kind == models.EventPostLiked {
		event.LikeCount = post.LikeCount
	}
	s.events.Publish(event)
}

func (s *PostService) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.AddOperationLatency(op, time.Since(start))
	}
}

func validatePost(input *models.PostUpdate) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Message = strings.TrimSpace(input.Message)
	if input.Title == "" {
		return utils.NewInvalidInputError("title is required")
	}
	if input.Message == "" {
		return utils.NewInvalidInputError("message is required")
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}
	return nil
}
