package controllers

import (
	"net/http"

	"mingle/app/middleware"
	"mingle/app/models"
	"mingle/app/services"
)

// UserView is the public part of a registered user.
type UserView struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserController handles registration and login
type UserController struct {
	users *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	user, err := uc.users.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, UserView{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login returns the token both in the auth-token header and in the body.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	token, err := uc.users.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set(middleware.AuthTokenHeader, token)
	sendJSON(w, http.StatusOK, map[string]string{middleware.AuthTokenHeader: token})
}
