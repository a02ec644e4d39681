package repositories

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Repository owns a Badger database and the repositories built on it.
type Repository struct {
	db       *badger.DB
	mutex    sync.RWMutex
	dbPath   string
	isTestDB bool

	Posts *BadgerPostRepository
	Users *BadgerUserRepository
}

// NewRepository opens the database at path. An empty path or "test_db"
// opens a fresh database in a temporary directory that Close removes.
func NewRepository(path string) (*Repository, error) {
	isTest := false
	if path == "" || path == "test_db" {
		tempPath, err := os.MkdirTemp("", "mingle_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if isTest {
		opts = opts.WithSyncWrites(false).WithNumVersionsToKeep(1)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return newRepository(db, path, isTest), nil
}

// NewInMemoryRepository opens a database that lives only in memory.
func NewInMemoryRepository() (*Repository, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return newRepository(db, "", false), nil
}

func newRepository(db *badger.DB, path string, isTest bool) *Repository {
	return &Repository{
		db:       db,
		dbPath:   path,
		isTestDB: isTest,
		Posts:    NewBadgerPostRepository(db),
		Users:    NewBadgerUserRepository(db),
	}
}

// DB exposes the underlying handle.
func (r *Repository) DB() *badger.DB {
	return r.db
}

func (r *Repository) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.db.Close()
	if err != nil {
		return err
	}

	// Clean up test database
	if r.isTestDB {
		err = os.RemoveAll(r.dbPath)
		if err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// Backup writes a full snapshot of the database to w.
func (r *Repository) Backup(w io.Writer) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, err := r.db.Backup(w, 0)
	return err
}

// Load restores a snapshot produced by Backup.
func (r *Repository) Load(rd io.Reader) (err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	return r.db.Load(rd, 4)
}

// Clear drops every key.
func (r *Repository) Clear() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.db.DropAll()
}
