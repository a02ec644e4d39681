package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NewPost builds a Live post owned by owner that expires ttl after now.
// Repeated topics are collapsed, keeping their first position.
func NewPost(req CreatePostRequest, owner AuthContext, now time.Time) *Post {
	now = now.UTC()
	return &Post{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Body:         req.Body,
		Topics:       uniqueTopics(req.Topics),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Duration(req.ExpiresInMinutes) * time.Minute),
		Status:       StatusLive,
		OwnerID:      owner.UserID,
		OwnerName:    owner.Username,
		Interactions: []Interaction{},
	}
}

// Validate checks the structural invariants of a stored post.
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if !p.ExpiresAt.After(p.CreatedAt) {
		return errors.New("expires_at must be after created_at")
	}

	return nil
}

// HasTopic reports whether the post is tagged with t.
func (p *Post) HasTopic(t Topic) bool {
	for _, topic := range p.Topics {
		if topic == t {
			return true
		}
	}
	return false
}

// Append adds an interaction to the end of the ledger. Existing entries are
// never modified.
func (p *Post) Append(i Interaction) {
	p.Interactions = append(p.Interactions, i)
}

// Clone returns a copy that shares no slices with p.
func (p *Post) Clone() *Post {
	c := *p
	c.Topics = append([]Topic(nil), p.Topics...)
	c.Interactions = append(make([]Interaction, 0, len(p.Interactions)), p.Interactions...)
	return &c
}

func uniqueTopics(topics []Topic) []Topic {
	seen := make(map[Topic]struct{}, len(topics))
	out := make([]Topic, 0, len(topics))
	for _, t := range topics {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
