package models

import "strings"

// CreatePostRequest is the payload for publishing a post. The lifetime is
// capped at thirty days.
type CreatePostRequest struct {
	Title            string  `json:"title" validate:"required,min=3,max=256"`
	Topics           []Topic `json:"topics" validate:"required,min=1,dive,topic"`
	Body             string  `json:"body" validate:"required,min=1"`
	ExpiresInMinutes int     `json:"expiresInMinutes" validate:"required,min=1,max=43200"`
}

func (r *CreatePostRequest) Validate() error {
	return validateRequest(r)
}

// CommentRequest is the payload for commenting on a post.
type CommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1024"`
}

func (r *CommentRequest) Validate() error {
	return validateRequest(r)
}

// RegisterRequest is the payload for creating an account. Passwords are
// capped at 72 bytes, the most bcrypt will hash.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=256"`
	Email    string `json:"email" validate:"required,min=6,max=256,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (r *RegisterRequest) Validate() error {
	return validateRequest(r)
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,min=6,max=256,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (r *LoginRequest) Validate() error {
	return validateRequest(r)
}

// NormalizeEmail is the canonical form used for lookups and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
