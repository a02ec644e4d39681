package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mingle/app/models"
	"mingle/app/repositories"
)

// PostService handles creating, reading and ranking posts. Every read
// refreshes statuses and persists the ones that changed.
type PostService struct {
	posts  repositories.PostRepository
	logger *slog.Logger
	now    func() time.Time
}

// MostActiveResult is the leader of a topic and its activity score.
type MostActiveResult struct {
	Post  *models.Post
	Score int
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:  posts,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the service's time source.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// CreatePost validates req and stores a new Live post owned by owner.
func (s *PostService) CreatePost(ctx context.Context, owner models.AuthContext, req models.CreatePostRequest) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post := models.NewPost(req, owner, s.now())
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post", "owner_id", owner.UserID, "error", err)
		return nil, persistenceError("create post", err)
	}

	s.logger.Info("post created", "post_id", post.ID, "owner_id", owner.UserID, "topics", post.Topics)
	return post, nil
}

// GetPost returns the post with its status refreshed.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	now := s.now()
	post, err := s.posts.Update(ctx, id, func(p *models.Post) error {
		p.Refresh(now)
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, persistenceError("get post", err)
	}
	return post, nil
}

// ListPosts returns posts newest first, optionally narrowed to a topic. The
// status filter applies to refreshed statuses; an empty status keeps all.
func (s *PostService) ListPosts(ctx context.Context, topic models.Topic, status models.Status) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx, repositories.PostFilter{Topic: topic, Order: repositories.OrderNewest})
	if err != nil {
		return nil, persistenceError("list posts", err)
	}

	posts, err = s.refreshAll(ctx, posts, s.now())
	if err != nil {
		return nil, err
	}
	if status == "" {
		return posts, nil
	}

	filtered := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// MostActive ranks the topic's posts oldest first, so the oldest post wins
// a tie on score.
func (s *PostService) MostActive(ctx context.Context, topic models.Topic) (*MostActiveResult, error) {
	posts, err := s.posts.List(ctx, repositories.PostFilter{Topic: topic, Order: repositories.OrderOldest})
	if err != nil {
		return nil, persistenceError("list posts", err)
	}
	if len(posts) == 0 {
		return nil, ErrTopicEmpty
	}

	now := s.now()
	posts, err = s.refreshAll(ctx, posts, now)
	if err != nil {
		return nil, err
	}

	leader, score, ok := models.MostActive(posts, now)
	if !ok {
		return nil, ErrTopicEmpty
	}
	return &MostActiveResult{Post: leader, Score: score}, nil
}

// ExpiredHistory returns the topic's posts with expiresAt at or before now,
// most recently expired first, each stored as Expired.
func (s *PostService) ExpiredHistory(ctx context.Context, topic models.Topic) ([]*models.Post, error) {
	now := s.now()
	posts, err := s.posts.List(ctx, repositories.PostFilter{
		Topic:     topic,
		ExpiredBy: now,
		Order:     repositories.OrderRecentlyExpired,
	})
	if err != nil {
		return nil, persistenceError("list expired posts", err)
	}

	for i, p := range posts {
		if p.Status == models.StatusExpired {
			continue
		}
		stored, err := s.posts.Update(ctx, p.ID, func(p *models.Post) error {
			p.Status = models.StatusExpired
			return nil
		})
		if err != nil {
			return nil, persistenceError("expire post", err)
		}
		posts[i] = stored
	}
	return posts, nil
}

// refreshAll refreshes each post independently and stores those whose
// status changed.
func (s *PostService) refreshAll(ctx context.Context, posts []*models.Post, now time.Time) ([]*models.Post, error) {
	for i, p := range posts {
		if !p.Refresh(now) {
			continue
		}
		stored, err := s.posts.Update(ctx, p.ID, func(p *models.Post) error {
			p.Refresh(now)
			return nil
		})
		if err != nil {
			return nil, persistenceError("refresh post status", err)
		}
		s.logger.Debug("post status refreshed", "post_id", p.ID, "status", stored.Status)
		posts[i] = stored
	}
	return posts, nil
}
