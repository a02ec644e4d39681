package services

import (
	"errors"
	"fmt"

	"mingle/app/models"
)

var (
	// ErrPostNotFound indicates the requested post doesn't exist
	ErrPostNotFound = errors.New("post not found")

	// ErrTopicEmpty indicates a topic has no posts to rank
	ErrTopicEmpty = errors.New("no posts found for this topic")

	// ErrPostExpired indicates an interaction arrived at or after expiry
	ErrPostExpired = errors.New("post has expired")

	// ErrSelfInteraction indicates an owner tried to like or dislike their own post
	ErrSelfInteraction = errors.New("post owners cannot react to their own posts")

	// ErrEmailTaken indicates the email is already registered
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong password
	ErrInvalidCredentials = errors.New("email or password is wrong")

	// ErrUnauthorized indicates a missing or invalid token
	ErrUnauthorized = errors.New("unauthorized")
)

// SelfInteractionError records which reaction the owner attempted. It
// matches ErrSelfInteraction.
type SelfInteractionError struct {
	Kind models.InteractionKind
}

func (e *SelfInteractionError) Error() string {
	return fmt.Sprintf("post owners cannot %s their own posts", e.Kind)
}

func (e *SelfInteractionError) Is(target error) bool {
	return target == ErrSelfInteraction
}

// PersistenceError wraps a storage failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
