package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mingle/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) *Repository {
	repo, err := NewInMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func like(userID string) models.Interaction {
	return models.Interaction{
		UserID:    userID,
		Username:  "user " + userID,
		Action:    models.Like{},
		TimeLeft:  time.Minute,
		CreatedAt: testNow,
	}
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepository(t)
	posts := repo.Posts

	t.Run("create and get post", func(t *testing.T) {
		post := testPost("create-get", testNow, 10*time.Minute)
		require.NoError(t, posts.Create(ctx, post))

		retrieved, err := posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Title, retrieved.Title)
		assert.Equal(t, post.Topics, retrieved.Topics)
		assert.True(t, post.ExpiresAt.Equal(retrieved.ExpiresAt))
		assert.Equal(t, models.StatusLive, retrieved.Status)
		assert.Empty(t, retrieved.Interactions)
	})

	t.Run("duplicate id", func(t *testing.T) {
		post := testPost("dup", testNow, 10*time.Minute)
		require.NoError(t, posts.Create(ctx, post))
		err := posts.Create(ctx, post)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("invalid post is rejected", func(t *testing.T) {
		post := testPost("invalid", testNow, 10*time.Minute)
		post.Title = ""
		assert.Error(t, posts.Create(ctx, post))

		_, err := posts.GetByID(ctx, "invalid")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := posts.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update missing post", func(t *testing.T) {
		called := false
		_, err := posts.Update(ctx, "missing", func(p *models.Post) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, called)
	})
}

func TestPostRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepository(t)
	posts := repo.Posts

	fixtures := []*models.Post{
		testPost("old-tech", testNow.Add(-2*time.Hour), time.Hour, models.TopicTech),
		testPost("mid-health", testNow.Add(-time.Hour), 30*time.Minute, models.TopicHealth),
		testPost("new-tech", testNow, time.Hour, models.TopicTech, models.TopicSport),
	}
	for _, p := range fixtures {
		require.NoError(t, posts.Create(ctx, p))
	}

	// keys that share the badger keyspace must not leak into post listings
	require.NoError(t, repo.Users.Create(ctx, &models.User{
		ID: "u1", Username: "Olga", Email: "olga@example.com", PasswordHash: "x", CreatedAt: testNow,
	}))

	tests := []struct {
		name   string
		filter PostFilter
		want   []string
	}{
		{name: "all newest first", filter: PostFilter{}, want: []string{"new-tech", "mid-health", "old-tech"}},
		{name: "topic", filter: PostFilter{Topic: models.TopicTech}, want: []string{"new-tech", "old-tech"}},
		{name: "oldest first", filter: PostFilter{Topic: models.TopicTech, Order: OrderOldest}, want: []string{"old-tech", "new-tech"}},
		{
			name:   "expired by now",
			filter: PostFilter{ExpiredBy: testNow, Order: OrderRecentlyExpired},
			want:   []string{"mid-health", "old-tech"},
		},
		{name: "no match", filter: PostFilter{Topic: models.TopicPolitics}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := posts.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestPostRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepository(t)
	posts := repo.Posts

	t.Run("appends interaction", func(t *testing.T) {
		require.NoError(t, posts.Create(ctx, testPost("append", testNow, time.Hour)))

		updated, err := posts.Update(ctx, "append", func(p *models.Post) error {
			p.Append(like("u1"))
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, updated.Interactions, 1)

		stored, err := posts.GetByID(ctx, "append")
		require.NoError(t, err)
		require.Len(t, stored.Interactions, 1)
		assert.Equal(t, models.KindLike, stored.Interactions[0].Kind())
	})

	t.Run("writes back when mutation fails", func(t *testing.T) {
		require.NoError(t, posts.Create(ctx, testPost("expire", testNow.Add(-time.Hour), time.Minute)))
		errRejected := errors.New("rejected")

		updated, err := posts.Update(ctx, "expire", func(p *models.Post) error {
			p.Refresh(testNow)
			return errRejected
		})
		assert.ErrorIs(t, err, errRejected)
		require.NotNil(t, updated)
		assert.Equal(t, models.StatusExpired, updated.Status)

		stored, err := posts.GetByID(ctx, "expire")
		require.NoError(t, err)
		assert.Equal(t, models.StatusExpired, stored.Status)
		assert.Empty(t, stored.Interactions)
	})

	t.Run("unchanged post is not rewritten", func(t *testing.T) {
		require.NoError(t, posts.Create(ctx, testPost("same", testNow, time.Hour)))

		versionOf := func() uint64 {
			var version uint64
			err := repo.DB().View(func(txn *badger.Txn) error {
				item, err := txn.Get(postKey("same"))
				if err != nil {
					return err
				}
				version = item.Version()
				return nil
			})
			require.NoError(t, err)
			return version
		}

		before := versionOf()
		_, err := posts.Update(ctx, "same", func(p *models.Post) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, before, versionOf())
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		require.NoError(t, posts.Create(ctx, testPost("busy", testNow, time.Hour)))

		// a second handle on the same database shares no in-process lock,
		// so its writers genuinely conflict with the first handle's
		other := NewBadgerPostRepository(repo.DB())
		const writers = 40
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				target := PostRepository(posts)
				if i%2 == 1 {
					target = other
				}
				userID := fmt.Sprintf("user-%d", i)
				_, err := target.Update(ctx, "busy", func(p *models.Post) error {
					p.Append(like(userID))
					return nil
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		stored, err := posts.GetByID(ctx, "busy")
		require.NoError(t, err)
		assert.Len(t, stored.Interactions, writers)
	})

	t.Run("conflicting update gives up when context ends", func(t *testing.T) {
		require.NoError(t, posts.Create(ctx, testPost("held", testNow, time.Hour)))

		// keep committing to the post from inside fn so every attempt conflicts
		other := NewBadgerPostRepository(repo.DB())
		short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, err := posts.Update(short, "held", func(p *models.Post) error {
			_, err := other.Update(ctx, "held", func(q *models.Post) error {
				q.Append(like("interloper"))
				return nil
			})
			require.NoError(t, err)
			p.Append(like("loser"))
			return nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := posts.Update(cancelled, "append", func(p *models.Post) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
