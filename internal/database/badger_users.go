package database

import (
	"context"
	"errors"
	"sort"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"github.com/dgraph-io/badger/v4"
)

// userRecord is the stored form of a user; models.User hides the hash from JSON.
type userRecord struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"password"`
	Role           models.Role `json:"role"`
	Avatar         string      `json:"avatar,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		Role:           r.Role,
		Avatar:         r.Avatar,
		CreatedAt:      r.CreatedAt,
	}
}

func userKey(id string) string {
	return UserKeyPrefix + id
}

func userEmailKey(email string) string {
	return UserEmailKeyPrefix + email
}

func (b *BadgerDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = normalizeEmail(user.Email)

	record := &userRecord{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Role:           user.Role,
		Avatar:         user.Avatar,
		CreatedAt:      user.CreatedAt,
	}

	err := b.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(userEmailKey(record.Email)))
		if err == nil {
			return utils.NewAppError(utils.ErrDuplicate, "User already exists", nil)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set([]byte(userEmailKey(record.Email)), []byte(record.ID)); err != nil {
			return err
		}
		return setEntity(txn, userKey(record.ID), record)
	})
	if _, ok := utils.AsAppError(err); ok {
		return err
	}
	if err != nil {
		return utils.NewDatabaseError("failed to create user", err)
	}
	return nil
}

func (b *BadgerDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var record userRecord
	err := b.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, userKey(id), &record)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to load user", err)
	}
	return record.toModel(), nil
}

func (b *BadgerDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var record userRecord
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailKey(normalizeEmail(email))))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getEntity(txn, userKey(string(id)), &record)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to load user", err)
	}
	return record.toModel(), nil
}

func (b *BadgerDB) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if id == "" {
				continue
			}
			var record userRecord
			err := getEntity(txn, userKey(id), &record)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users[id] = record.toModel()
		}
		return nil
	})
	if err != nil {
		return nil, utils.NewDatabaseError("failed to query users", err)
	}
	return users, nil
}

func (b *BadgerDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0)
	err := b.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, UserKeyPrefix, func(val []byte) error {
			var record userRecord
			if err := unmarshalEntity(val, &record); err != nil {
				return err
			}
			users = append(users, record.toModel())
			return nil
		})
	})
	if err != nil {
		return nil, utils.NewDatabaseError("failed to query users", err)
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}
