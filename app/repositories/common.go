package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"mingle/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix      = "post:"
	UserKeyPrefix      = "user:"
	UserEmailKeyPrefix = "user-email:"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Backoff bounds between attempts of a transaction that lost a conflict.
const (
	conflictBackoffMin = time.Millisecond
	conflictBackoffMax = 50 * time.Millisecond
)

// keyLocks serialises writers of the same key inside one process, so that
// only writers through another handle can make a transaction conflict.
type keyLocks [64]sync.Mutex

func (l *keyLocks) lock(key string) (unlock func()) {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &l[h.Sum32()%uint32(len(l))]
	m.Lock()
	return m.Unlock
}

// updateWithRetry runs fn in a read-write transaction. On ErrConflict the
// whole transaction runs again on a fresh snapshot after a jittered backoff,
// until it commits, fails otherwise, or ctx is done.
func updateWithRetry(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	backoff := conflictBackoffMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}

		wait := backoff/2 + rand.N(backoff/2+1)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if backoff < conflictBackoffMax {
			backoff *= 2
		}
	}
}

// Match reports whether post passes the filter.
func (f PostFilter) Match(post *models.Post) bool {
	if f.Topic != "" && !post.HasTopic(f.Topic) {
		return false
	}
	if !f.ExpiredBy.IsZero() && post.ExpiresAt.After(f.ExpiredBy) {
		return false
	}
	return true
}

// SortPosts orders posts in place. Ties are broken by id so every order is
// total.
func SortPosts(posts []*models.Post, order PostOrder) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		switch order {
		case OrderOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		case OrderRecentlyExpired:
			if !a.ExpiresAt.Equal(b.ExpiresAt) {
				return a.ExpiresAt.After(b.ExpiresAt)
			}
			return a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	})
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
