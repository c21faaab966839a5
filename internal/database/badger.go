package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix      = "post:"
	UserKeyPrefix      = "user:"
	UserEmailKeyPrefix = "user-email:"
)

// BadgerDB is the embedded store used for local development and tests. Posts
// and users are JSON values; every read-modify-write runs in a transaction
// that is retried when Badger reports a conflict.
type BadgerDB struct {
	db *badger.DB
}

// NewBadgerDB opens a Badger store at path, or an in-memory one when path is empty.
func NewBadgerDB(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerDB{db: db}, nil
}

func (b *BadgerDB) Close(ctx context.Context) error {
	return b.db.Close()
}

func (b *BadgerDB) Ping(ctx context.Context) error {
	if b.db.IsClosed() {
		return errors.New("badger store is closed")
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on conflicts until it
// commits or ctx is done.
func (b *BadgerDB) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 1; ; attempt++ {
		err := b.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return utils.NewDatabaseError("transaction aborted", ctx.Err())
		}
		if attempt%10 == 0 {
			log.Printf("Badger transaction still conflicting after %d attempts", attempt)
			time.Sleep(time.Millisecond)
		}
	}
}

func getEntity(txn *badger.Txn, key string, entity interface{}) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func setEntity(txn *badger.Txn, key string, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// scanPrefix decodes every value under prefix with decode.
func scanPrefix(txn *badger.Txn, prefix string, decode func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// CountStats totals users, posts and embedded comments.
func (b *BadgerDB) CountStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(UserKeyPrefix)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			stats.TotalUsers++
		}
		it.Close()

		return scanPrefix(txn, PostKeyPrefix, func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			stats.TotalPosts++
			stats.TotalComments += int64(len(post.Comments))
			return nil
		})
	})
	if err != nil {
		return nil, utils.NewDatabaseError("failed to count stats", err)
	}
	return stats, nil
}
