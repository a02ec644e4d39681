package repositories

import (
	"context"
	"time"

	"mingle/app/models"
)

// PostOrder selects the order List returns posts in.
type PostOrder int

const (
	// OrderNewest sorts by createdAt descending.
	OrderNewest PostOrder = iota
	// OrderOldest sorts by createdAt ascending.
	OrderOldest
	// OrderRecentlyExpired sorts by expiresAt descending.
	OrderRecentlyExpired
)

// PostFilter narrows List. The zero value matches every post.
type PostFilter struct {
	Topic models.Topic
	// ExpiredBy, when set, keeps only posts with expiresAt <= ExpiredBy.
	ExpiredBy time.Time
	Order     PostOrder
}

// PostMutation changes a post inside an atomic read-modify-write.
type PostMutation func(post *models.Post) error

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	// Update loads the post, applies fn to a private copy and stores the
	// result in one atomic step. The copy is written back even when fn
	// fails, so partial observations such as a refreshed status survive,
	// and fn's error is returned alongside the stored post.
	Update(ctx context.Context, id string, fn PostMutation) (*models.Post, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create stores a new user. It returns ErrDuplicate when the email is
	// already registered.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
