package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mingle/app/models"
	"mingle/app/repositories"
)

// InteractionService appends likes, dislikes and comments to posts.
type InteractionService struct {
	posts  repositories.PostRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewInteractionService creates a new InteractionService
func NewInteractionService(posts repositories.PostRepository, logger *slog.Logger) *InteractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InteractionService{
		posts:  posts,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the service's time source.
func (s *InteractionService) WithClock(now func() time.Time) *InteractionService {
	s.now = now
	return s
}

func (s *InteractionService) Like(ctx context.Context, actor models.AuthContext, postID string) (*models.Post, error) {
	return s.record(ctx, actor, postID, models.Like{})
}

func (s *InteractionService) Dislike(ctx context.Context, actor models.AuthContext, postID string) (*models.Post, error) {
	return s.record(ctx, actor, postID, models.Dislike{})
}

// Comment validates req before the post is loaded.
func (s *InteractionService) Comment(ctx context.Context, actor models.AuthContext, postID string, req models.CommentRequest) (*models.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.record(ctx, actor, postID, models.Comment{Text: req.Text})
}

func (s *InteractionService) record(ctx context.Context, actor models.AuthContext, postID string, action models.Action) (*models.Post, error) {
	now := s.now()
	post, err := s.posts.Update(ctx, postID, func(p *models.Post) error {
		return RecordInteraction(p, actor, action, now)
	})
	if err == nil {
		s.logger.Debug("interaction recorded",
			"post_id", postID, "user_id", actor.UserID, "type", action.Kind())
		return post, nil
	}

	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if errors.Is(err, ErrPostExpired) || errors.Is(err, ErrSelfInteraction) {
		return nil, err
	}
	s.logger.Error("failed to record interaction",
		"post_id", postID, "type", action.Kind(), "error", err)
	return nil, persistenceError("record interaction", err)
}

// RecordInteraction applies one interaction to post in place. The status is
// refreshed first, so a post found expired comes back with status Expired
// along with ErrPostExpired and no new entry.
func RecordInteraction(post *models.Post, actor models.AuthContext, action models.Action, now time.Time) error {
	post.Refresh(now)
	if post.Status == models.StatusExpired {
		return ErrPostExpired
	}

	kind := action.Kind()
	if kind != models.KindComment && post.OwnerID == actor.UserID {
		return &SelfInteractionError{Kind: kind}
	}

	post.Append(models.Interaction{
		UserID:    actor.UserID,
		Username:  actor.Username,
		Action:    action,
		TimeLeft:  post.ExpiresAt.Sub(now),
		CreatedAt: now.UTC(),
	})
	return nil
}
