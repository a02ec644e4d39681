package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// InteractionKind is the wire tag of an interaction.
type InteractionKind string

const (
	KindLike    InteractionKind = "like"
	KindDislike InteractionKind = "dislike"
	KindComment InteractionKind = "comment"
)

// Action is what a user did to a post. It is implemented only by Like,
// Dislike and Comment.
type Action interface {
	Kind() InteractionKind
	isAction()
}

// Like is a positive reaction.
type Like struct{}

// Dislike is a negative reaction.
type Dislike struct{}

// Comment carries the text a user wrote on a post.
type Comment struct {
	Text string
}

func (Like) Kind() InteractionKind    { return KindLike }
func (Dislike) Kind() InteractionKind { return KindDislike }
func (Comment) Kind() InteractionKind { return KindComment }

func (Like) isAction()    {}
func (Dislike) isAction() {}
func (Comment) isAction() {}

// Interaction is a single ledger entry on a post.
type Interaction struct {
	UserID   string
	Username string
	Action   Action
	// TimeLeft is ExpiresAt minus the time the interaction was recorded.
	TimeLeft  time.Duration
	CreatedAt time.Time
}

// Kind returns the tag of the interaction's action.
func (i Interaction) Kind() InteractionKind {
	if i.Action == nil {
		return ""
	}
	return i.Action.Kind()
}

// CommentText returns the comment body when the interaction is a comment.
func (i Interaction) CommentText() (string, bool) {
	c, ok := i.Action.(Comment)
	if !ok {
		return "", false
	}
	return c.Text, true
}

// interactionRecord is the persisted and wire shape of an Interaction.
type interactionRecord struct {
	UserID                     string          `json:"userId"`
	Username                   string          `json:"username"`
	Type                       InteractionKind `json:"type"`
	CommentText                *string         `json:"commentText,omitempty"`
	TimeLeftBeforeExpirationMs int64           `json:"timeLeftBeforeExpirationMs"`
	CreatedAt                  time.Time       `json:"createdAt"`
}

// MarshalJSON flattens the action into the type/commentText pair.
func (i Interaction) MarshalJSON() ([]byte, error) {
	if i.Action == nil {
		return nil, fmt.Errorf("interaction by %s has no action", i.UserID)
	}
	rec := interactionRecord{
		UserID:                     i.UserID,
		Username:                   i.Username,
		Type:                       i.Action.Kind(),
		TimeLeftBeforeExpirationMs: i.TimeLeft.Milliseconds(),
		CreatedAt:                  i.CreatedAt,
	}
	if text, ok := i.CommentText(); ok {
		rec.CommentText = &text
	}
	return json.Marshal(rec)
}

// UnmarshalJSON rebuilds the action from its tag, rejecting records where
// comment text and type disagree.
func (i *Interaction) UnmarshalJSON(data []byte) error {
	var rec interactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	var action Action
	switch rec.Type {
	case KindLike:
		action = Like{}
	case KindDislike:
		action = Dislike{}
	case KindComment:
		if rec.CommentText == nil || *rec.CommentText == "" {
			return fmt.Errorf("comment interaction without text")
		}
		action = Comment{Text: *rec.CommentText}
	default:
		return fmt.Errorf("unknown interaction type %q", rec.Type)
	}
	if rec.Type != KindComment && rec.CommentText != nil {
		return fmt.Errorf("%s interaction must not carry comment text", rec.Type)
	}

	*i = Interaction{
		UserID:    rec.UserID,
		Username:  rec.Username,
		Action:    action,
		TimeLeft:  time.Duration(rec.TimeLeftBeforeExpirationMs) * time.Millisecond,
		CreatedAt: rec.CreatedAt,
	}
	return nil
}
