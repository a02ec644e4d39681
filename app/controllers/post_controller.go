package controllers

import (
	"net/http"

	"mingle/app/middleware"
	"mingle/app/models"
	"mingle/app/services"

	"github.com/gorilla/mux"
)

// PostView is a post as returned by the API, with its interaction counts.
type PostView struct {
	*models.Post
	LikesCount    int `json:"likesCount"`
	DislikesCount int `json:"dislikesCount"`
	CommentsCount int `json:"commentsCount"`
}

func newPostView(post *models.Post) PostView {
	return PostView{
		Post:          post,
		LikesCount:    post.LikesCount(),
		DislikesCount: post.DislikesCount(),
		CommentsCount: post.CommentsCount(),
	}
}

func newPostViews(posts []*models.Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	return views
}

// MostActiveView is the body of the most-active endpoint.
type MostActiveView struct {
	Post          PostView `json:"post"`
	ActivityScore int      `json:"activityScore"`
}

// PostController handles HTTP requests for posts and their interactions
type PostController struct {
	posts        *services.PostService
	interactions *services.InteractionService
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, interactions *services.InteractionService) *PostController {
	return &PostController{
		posts:        posts,
		interactions: interactions,
	}
}

// Index lists posts, optionally narrowed by ?topic= and ?status=. An unknown
// status is ignored.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var topic models.Topic
	if raw := query.Get("topic"); raw != "" {
		parsed, err := models.ParseTopic(raw)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		topic = parsed
	}
	status, _ := models.ParseStatus(query.Get("status"))

	posts, err := pc.posts.ListPosts(r.Context(), topic, status)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newPostViews(posts))
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.posts.GetPost(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newPostView(post))
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := pc.identity(w, r)
	if !ok {
		return
	}

	var req models.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	post, err := pc.posts.CreatePost(r.Context(), identity, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newPostView(post))
}

func (pc *PostController) Like(w http.ResponseWriter, r *http.Request) {
	identity, ok := pc.identity(w, r)
	if !ok {
		return
	}
	post, err := pc.interactions.Like(r.Context(), identity, mux.Vars(r)["postId"])
	pc.sendInteraction(w, r, post, err)
}

func (pc *PostController) Dislike(w http.ResponseWriter, r *http.Request) {
	identity, ok := pc.identity(w, r)
	if !ok {
		return
	}
	post, err := pc.interactions.Dislike(r.Context(), identity, mux.Vars(r)["postId"])
	pc.sendInteraction(w, r, post, err)
}

func (pc *PostController) Comment(w http.ResponseWriter, r *http.Request) {
	identity, ok := pc.identity(w, r)
	if !ok {
		return
	}

	var req models.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	post, err := pc.interactions.Comment(r.Context(), identity, mux.Vars(r)["postId"], req)
	pc.sendInteraction(w, r, post, err)
}

// MostActive returns the topic's post with the most likes and dislikes
func (pc *PostController) MostActive(w http.ResponseWriter, r *http.Request) {
	topic, err := models.ParseTopic(mux.Vars(r)["topic"])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := pc.posts.MostActive(r.Context(), topic)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, MostActiveView{
		Post:          newPostView(result.Post),
		ActivityScore: result.Score,
	})
}

// Expired returns the topic's expired posts, most recently expired first
func (pc *PostController) Expired(w http.ResponseWriter, r *http.Request) {
	topic, err := models.ParseTopic(mux.Vars(r)["topic"])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	posts, err := pc.posts.ExpiredHistory(r.Context(), topic)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newPostViews(posts))
}

func (pc *PostController) sendInteraction(w http.ResponseWriter, r *http.Request, post *models.Post, err error) {
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, newPostView(post))
}

// identity returns the caller set by middleware.RequireAuth.
func (pc *PostController) identity(w http.ResponseWriter, r *http.Request) (models.AuthContext, bool) {
	identity, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		sendError(w, http.StatusUnauthorized, "Unauthorized", "Access denied. No token provided.")
	}
	return identity, ok
}
