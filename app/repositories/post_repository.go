package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"mingle/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db    *badger.DB
	locks keyLocks
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	data, err := marshalEntity(post)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(post.ID)

		_, err := txn.Get(key)
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves every post matching filter in the requested order
func (r *BadgerPostRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if filter.Match(&post) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortPosts(posts, filter.Order)
	return posts, nil
}

// Update applies fn to the post in a read-write transaction. Updates of the
// same post are serialised in process; a conflict with another writer reruns
// fn on a fresh read until it commits or ctx is done.
func (r *BadgerPostRepository) Update(ctx context.Context, id string, fn PostMutation) (*models.Post, error) {
	key := postKey(id)
	unlock := r.locks.lock(string(key))
	defer unlock()

	var (
		stored *models.Post
		fnErr  error
	)
	err := updateWithRetry(ctx, r.db, func(txn *badger.Txn) error {
		stored, fnErr = nil, nil

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		original, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var post models.Post
		if err := unmarshalEntity(original, &post); err != nil {
			return err
		}

		fnErr = fn(&post)

		data, err := marshalEntity(&post)
		if err != nil {
			return err
		}
		stored = &post
		if bytes.Equal(data, original) {
			return nil
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}
	return stored, fnErr
}
