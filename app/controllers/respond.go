package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"mingle/app/models"
	"mingle/app/services"
)

// maxBodyBytes bounds request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Details []models.FieldError `json:"details,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func sendError(w http.ResponseWriter, status int, code, message string) {
	sendJSON(w, status, errorResponse{Error: code, Message: message})
}

// decodeJSON reads a single JSON object into dst. Unknown fields are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return models.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		sendJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "ValidationError",
			Message: verr.Error(),
			Details: verr.Fields,
		})
		return
	}

	var selfErr *services.SelfInteractionError
	switch {
	case errors.As(err, &selfErr):
		sendError(w, http.StatusBadRequest, "SelfInteractionForbidden",
			fmt.Sprintf("Post owners cannot %s their own posts.", selfErr.Kind))
	case errors.Is(err, services.ErrPostNotFound):
		sendError(w, http.StatusNotFound, "NotFound", "Post not found")
	case errors.Is(err, services.ErrTopicEmpty):
		sendError(w, http.StatusNotFound, "NotFound", "No posts found for this topic")
	case errors.Is(err, services.ErrPostExpired):
		sendError(w, http.StatusBadRequest, "PostExpired",
			"Post has expired. No further likes/dislikes/comments allowed.")
	case errors.Is(err, services.ErrSelfInteraction):
		sendError(w, http.StatusBadRequest, "SelfInteractionForbidden",
			"Post owners cannot like or dislike their own posts.")
	case errors.Is(err, services.ErrEmailTaken):
		sendError(w, http.StatusBadRequest, "EmailTaken", "Email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		sendError(w, http.StatusBadRequest, "InvalidCredentials", "Email or password is wrong.")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		sendError(w, http.StatusInternalServerError, "InternalError", "An internal error occurred")
	}
}
