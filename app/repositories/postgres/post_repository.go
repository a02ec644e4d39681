package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mingle/app/models"
	"mingle/app/repositories"

	"github.com/lib/pq"
)

const postColumns = `id, title, body, topics, created_at, expires_at, status, owner_id, owner_name, interactions`

type postRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) repositories.PostRepository {
	return &postRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func topicStrings(topics []models.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post         models.Post
		topics       []string
		status       string
		interactions []byte
	)
	err := row.Scan(
		&post.ID, &post.Title, &post.Body, pq.Array(&topics),
		&post.CreatedAt, &post.ExpiresAt, &status,
		&post.OwnerID, &post.OwnerName, &interactions,
	)
	if err != nil {
		return nil, err
	}

	post.CreatedAt = post.CreatedAt.UTC()
	post.ExpiresAt = post.ExpiresAt.UTC()
	post.Status = models.Status(status)
	post.Topics = make([]models.Topic, len(topics))
	for i, t := range topics {
		post.Topics[i] = models.Topic(t)
	}
	post.Interactions = []models.Interaction{}
	if err := json.Unmarshal(interactions, &post.Interactions); err != nil {
		return nil, fmt.Errorf("failed to decode interactions of post %s: %w", post.ID, err)
	}
	return &post, nil
}

func encodeInteractions(post *models.Post) ([]byte, error) {
	interactions := post.Interactions
	if interactions == nil {
		interactions = []models.Interaction{}
	}
	data, err := json.Marshal(interactions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode interactions of post %s: %w", post.ID, err)
	}
	return data, nil
}

// Create inserts a new post into the posts table
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}
	interactions, err := encodeInteractions(post)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Body, pq.Array(topicStrings(post.Topics)),
		post.CreatedAt, post.ExpiresAt, string(post.Status),
		post.OwnerID, post.OwnerName, string(interactions),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// List retrieves every post matching filter in the requested order
func (r *postRepository) List(ctx context.Context, filter repositories.PostFilter) ([]*models.Post, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Topic != "" {
		args = append(args, string(filter.Topic))
		where = append(where, fmt.Sprintf("$%d = ANY(topics)", len(args)))
	}
	if !filter.ExpiredBy.IsZero() {
		args = append(args, filter.ExpiredBy)
		where = append(where, fmt.Sprintf("expires_at <= $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ` + orderClause(filter.Order)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

// orderClause mirrors repositories.SortPosts, ids included as tie-breakers.
func orderClause(order repositories.PostOrder) string {
	switch order {
	case repositories.OrderOldest:
		return "created_at ASC, id ASC"
	case repositories.OrderRecentlyExpired:
		return "expires_at DESC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

// Update locks the row for the duration of fn so concurrent updates of the
// same post run one after another.
func (r *postRepository) Update(ctx context.Context, id string, fn repositories.PostMutation) (*models.Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 FOR UPDATE`
	post, err := scanPost(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock post: %w", err)
	}

	before, err := encodeInteractions(post)
	if err != nil {
		return nil, err
	}
	status := post.Status

	fnErr := fn(post)

	after, err := encodeInteractions(post)
	if err != nil {
		return nil, err
	}
	if status != post.Status || !bytes.Equal(before, after) {
		_, err = tx.ExecContext(ctx,
			`UPDATE posts SET status = $2, interactions = $3 WHERE id = $1`,
			id, string(post.Status), string(after),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit post update: %w", err)
	}
	return post, fnErr
}
