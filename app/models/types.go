package models

import (
	"fmt"
	"time"
)

// Topic is one of the fixed categories a post can be tagged with.
type Topic string

const (
	TopicPolitics Topic = "Politics"
	TopicHealth   Topic = "Health"
	TopicSport    Topic = "Sport"
	TopicTech     Topic = "Tech"
)

// Topics lists every valid topic.
var Topics = []Topic{TopicPolitics, TopicHealth, TopicSport, TopicTech}

// Valid reports whether t is a member of the closed topic set.
func (t Topic) Valid() bool {
	switch t {
	case TopicPolitics, TopicHealth, TopicSport, TopicTech:
		return true
	}
	return false
}

// ParseTopic converts raw input into a Topic.
func ParseTopic(raw string) (Topic, error) {
	t := Topic(raw)
	if !t.Valid() {
		return "", NewValidationError("topic", fmt.Sprintf("%q is not a valid topic (Politics, Health, Sport, Tech)", raw))
	}
	return t, nil
}

// Status is the derived liveness of a post.
type Status string

const (
	StatusLive    Status = "Live"
	StatusExpired Status = "Expired"
)

// ParseStatus returns the status named by raw, or false when raw names none.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusLive:
		return StatusLive, true
	case StatusExpired:
		return StatusExpired, true
	}
	return "", false
}

// Post is a time-boxed message together with its interaction ledger.
// Status is a cache of DeriveStatus(ExpiresAt, now) and must be refreshed
// before it is read or acted upon.
type Post struct {
	ID           string        `json:"id" validate:"required"`
	Title        string        `json:"title" validate:"required"`
	Body         string        `json:"body" validate:"required"`
	Topics       []Topic       `json:"topics" validate:"required,min=1,dive,topic"`
	CreatedAt    time.Time     `json:"createdAt" validate:"required"`
	ExpiresAt    time.Time     `json:"expiresAt" validate:"required,gtfield=CreatedAt"`
	Status       Status        `json:"status" validate:"required,oneof=Live Expired"`
	OwnerID      string        `json:"ownerId" validate:"required"`
	OwnerName    string        `json:"ownerName"`
	Interactions []Interaction `json:"interactions" validate:"-"`
}

// AuthContext identifies the verified caller of an operation.
type AuthContext struct {
	UserID   string
	Username string
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthContext returns the identity snapshot used when the user acts.
func (u *User) AuthContext() AuthContext {
	return AuthContext{UserID: u.ID, Username: u.Username}
}
