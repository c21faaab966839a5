package database

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"github.com/dgraph-io/badger/v4"
)

func postKey(id string) string {
	return PostKeyPrefix + id
}

func (b *BadgerDB) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = NewID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt
	post.Tags = nonNil(post.Tags)
	post.Likes = nonNil(post.Likes)
	post.LikeCount = len(post.Likes)
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	err := b.update(ctx, func(txn *badger.Txn) error {
		return setEntity(txn, postKey(post.ID), post)
	})
	if err != nil {
		return utils.NewDatabaseError("failed to create post", err)
	}
	return nil
}

func (b *BadgerDB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if !ValidID(id) {
		return nil, utils.NewNotFoundError("Post not found")
	}

	var post models.Post
	err := b.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to load post", err)
	}
	return &post, nil
}

// allPosts loads every post accepted by keep, newest first.
func (b *BadgerDB) allPosts(keep func(*models.Post) bool) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	err := b.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, PostKeyPrefix, func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			if keep(&post) {
				posts = append(posts, &post)
			}
			return nil
		})
	})
	if err != nil {
		return nil, utils.NewDatabaseError("database query failed", err)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (b *BadgerDB) ListPosts(ctx context.Context, f models.PostFilter, page, pageSize int) ([]*models.Post, int64, error) {
	posts, err := b.allPosts(func(p *models.Post) bool { return matchesListFilter(p, f) })
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(posts))
	start := pageOffset(page, pageSize)
	if start < 0 || start >= len(posts) {
		return []*models.Post{}, total, nil
	}
	end := start + pageSize
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end], total, nil
}

func (b *BadgerDB) SearchPosts(ctx context.Context, query, tag string, limit int) ([]*models.Post, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}
	posts, err := b.allPosts(func(p *models.Post) bool { return matchesSearch(p, query, tag) })
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (b *BadgerDB) UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	return b.mutatePost(ctx, id, func(post *models.Post) error {
		post.Title = update.Title
		post.Message = update.Message
		post.Tags = nonNil(update.Tags)
		post.SelectedFile = update.SelectedFile
		post.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (b *BadgerDB) DeletePost(ctx context.Context, id string) error {
	if !ValidID(id) {
		return utils.NewNotFoundError("Post not found")
	}

	err := b.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(postKey(id))); err != nil {
			return err
		}
		return txn.Delete([]byte(postKey(id)))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return utils.NewDatabaseError("failed to delete post", err)
	}
	return nil
}

func (b *BadgerDB) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return b.mutatePost(ctx, postID, func(post *models.Post) error {
		post.ToggleLike(userID)
		return nil
	})
}

func (b *BadgerDB) AddComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error) {
	if comment.ID == "" {
		comment.ID = NewID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	return b.mutatePost(ctx, postID, func(post *models.Post) error {
		post.Comments = append([]models.Comment{*comment}, post.Comments...)
		return nil
	})
}

func (b *BadgerDB) RemoveComment(ctx context.Context, postID, commentID string) (*models.Post, error) {
	return b.mutatePost(ctx, postID, func(post *models.Post) error {
		if !post.RemoveComment(commentID) {
			return utils.NewNotFoundError("Comment not found")
		}
		return nil
	})
}

// mutatePost loads the post, applies fn and writes it back in one transaction.
func (b *BadgerDB) mutatePost(ctx context.Context, id string, fn func(*models.Post) error) (*models.Post, error) {
	if !ValidID(id) {
		return nil, utils.NewNotFoundError("Post not found")
	}

	var post models.Post
	err := b.update(ctx, func(txn *badger.Txn) error {
		post = models.Post{}
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		if err := fn(&post); err != nil {
			return err
		}
		return setEntity(txn, postKey(id), &post)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if _, ok := utils.AsAppError(err); ok {
		return nil, err
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to update post", err)
	}
	return &post, nil
}

// matchesListFilter is the in-memory twin of buildListFilter.
func matchesListFilter(p *models.Post, f models.PostFilter) bool {
	if tag := strings.TrimSpace(f.Tag); tag != "" && !hasTag(p, tag) {
		return false
	}
	if creator := strings.TrimSpace(f.CreatorID); creator != "" && p.CreatorID != creator {
		return false
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		return containsFold(p.Title, search) || containsFold(p.Message, search)
	}
	return true
}

// matchesSearch is the in-memory twin of buildSearchFilter.
func matchesSearch(p *models.Post, query, tag string) bool {
	if t := strings.TrimSpace(tag); t != "" && !hasTag(p, t) {
		return false
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	if containsFold(p.Title, q) || containsFold(p.Message, q) {
		return true
	}
	for _, t := range p.Tags {
		if containsFold(t, q) {
			return true
		}
	}
	return false
}

func hasTag(p *models.Post, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
