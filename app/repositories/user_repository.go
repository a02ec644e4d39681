package repositories

import (
	"context"
	"errors"

	"mingle/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB. Emails
// are indexed under their own key so uniqueness is checked in the same
// transaction that stores the user.
type BadgerUserRepository struct {
	db    *badger.DB
	locks keyLocks
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func userKey(id string) []byte {
	return []byte(UserKeyPrefix + id)
}

func userEmailKey(email string) []byte {
	return []byte(UserEmailKeyPrefix + models.NormalizeEmail(email))
}

// Create creates a new user. A registration racing another one for the same
// email reruns after the conflict and then sees the winner's index key.
func (r *BadgerUserRepository) Create(ctx context.Context, user *models.User) error {
	data, err := marshalEntity(user)
	if err != nil {
		return err
	}

	emailKey := userEmailKey(user.Email)
	unlock := r.locks.lock(string(emailKey))
	defer unlock()

	return updateWithRetry(ctx, r.db, func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey)
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user through the email index
func (r *BadgerUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func getUser(txn *badger.Txn, id string) (*models.User, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = item.Value(func(val []byte) error {
		return unmarshalEntity(val, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
