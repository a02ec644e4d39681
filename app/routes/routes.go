package routes

import (
	"log/slog"
	"net/http"
	"time"

	"mingle/app/auth"
	"mingle/app/controllers"
	"mingle/app/middleware"
	"mingle/app/repositories"
	"mingle/app/services"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	Posts  repositories.PostRepository
	Users  repositories.UserRepository
	Tokens *auth.TokenIssuer
	Hasher *auth.PasswordHasher
	Logger *slog.Logger

	Version string
	// Now overrides the services' clock when set.
	Now func() time.Time
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher()
	}

	postService := services.NewPostService(deps.Posts, logger)
	interactionService := services.NewInteractionService(deps.Posts, logger)
	userService := services.NewUserService(deps.Users, hasher, deps.Tokens, logger)
	if deps.Now != nil {
		postService.WithClock(deps.Now)
		interactionService.WithClock(deps.Now)
	}

	postController := controllers.NewPostController(postService, interactionService)
	userController := controllers.NewUserController(userService)

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.ContentTypeJSON)

	router.NotFoundHandler = http.HandlerFunc(notFound)

	router.HandleFunc("/", controllers.InfoHandler(deps.Version)).Methods("GET")
	router.HandleFunc("/health", controllers.Health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// User endpoints
	user := api.PathPrefix("/user").Subrouter()
	user.HandleFunc("/register", userController.Register).Methods("POST")
	user.HandleFunc("/login", userController.Login).Methods("POST")

	// Posts endpoints, all authenticated
	posts := api.PathPrefix("/posts").Subrouter()
	posts.Use(middleware.RequireAuth(userService))
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/topic/{topic}/most-active", postController.MostActive).Methods("GET")
	posts.HandleFunc("/topic/{topic}/expired", postController.Expired).Methods("GET")
	posts.HandleFunc("/{postId}", postController.Show).Methods("GET")
	posts.HandleFunc("/{postId}/like", postController.Like).Methods("POST")
	posts.HandleFunc("/{postId}/dislike", postController.Dislike).Methods("POST")
	posts.HandleFunc("/{postId}/comment", postController.Comment).Methods("POST")

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"NotFound","message":"Route not found"}`))
}
