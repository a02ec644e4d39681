package mock

import (
	"context"
	"sync"

	"mingle/app/models"
	"mingle/app/repositories"
)

// PostRepository is an in-memory repositories.PostRepository. Posts are
// cloned on the way in and out so callers never share state with the store.
type PostRepository struct {
	posts map[string]*models.Post
	mutex sync.RWMutex

	// Err, when set, is returned by every method.
	Err error
	// Updates counts calls to Update that reached a stored post.
	Updates int
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts: make(map[string]*models.Post),
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
}

// Put stores post as-is, skipping validation.
func (m *PostRepository) Put(post *models.Post) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts[post.ID] = post.Clone()
}

func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[post.ID]; exists {
		return repositories.ErrDuplicate
	}
	m.posts[post.ID] = post.Clone()
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post.Clone(), nil
}

func (m *PostRepository) List(ctx context.Context, filter repositories.PostFilter) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := []*models.Post{}
	for _, post := range m.posts {
		if filter.Match(post) {
			posts = append(posts, post.Clone())
		}
	}
	repositories.SortPosts(posts, filter.Order)
	return posts, nil
}

func (m *PostRepository) Update(ctx context.Context, id string, fn repositories.PostMutation) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}

	m.Updates++
	working := post.Clone()
	fnErr := fn(working)
	m.posts[id] = working
	return working.Clone(), fnErr
}

// UserRepository is an in-memory repositories.UserRepository.
type UserRepository struct {
	users map[string]*models.User
	mutex sync.RWMutex

	Err error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*models.User),
	}
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	email := models.NormalizeEmail(user.Email)
	for _, existing := range m.users {
		if models.NormalizeEmail(existing.Email) == email {
			return repositories.ErrDuplicate
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	email = models.NormalizeEmail(email)
	for _, user := range m.users {
		if models.NormalizeEmail(user.Email) == email {
			found := *user
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}
