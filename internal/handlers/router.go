package handlers

import (
	"net/http"

	"memories/internal/loader"
	"memories/internal/middleware"
	"memories/internal/utils"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

// NewRouter builds the HTTP surface. CORS wraps the router so preflight
// requests are answered before route matching.
func NewRouter(s *Server) http.Handler {
	router := mux.NewRouter()
	router.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.AccessLog(s.Metrics),
		chimw.Recoverer,
		middleware.BodyLimit(middleware.MaxBodyBytes),
		middleware.RequestTimeout(s.Config.Server.RequestTimeout),
		loader.Middleware(s.Store),
	)

	protect := middleware.Authenticated(s.Tokens)
	ownerOrAdmin := middleware.OwnerOrAdmin(s.Posts)
	owned := func(h http.Handler) http.Handler { return protect(ownerOrAdmin(h)) }
	admin := func(h http.Handler) http.Handler { return protect(middleware.AdminOnly(h)) }

	router.HandleFunc("/", s.HandleRoot()).Methods(http.MethodGet)
	router.HandleFunc("/health", s.HandleHealth()).Methods(http.MethodGet)
	if s.Config.Server.MetricsEnabled && s.Metrics != nil {
		router.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)
	}
	router.HandleFunc("/ws", s.HandleWebSocket()).Methods(http.MethodGet)

	// Posts
	router.HandleFunc("/posts", s.HandleListPosts()).Methods(http.MethodGet)
	router.HandleFunc("/posts/search", s.HandleSearchPosts()).Methods(http.MethodGet)
	router.HandleFunc("/posts/{id}", s.HandleGetPost()).Methods(http.MethodGet)
	router.Handle("/posts", protect(s.HandleCreatePost())).Methods(http.MethodPost)
	router.Handle("/posts/{id}", owned(s.HandleUpdatePost())).Methods(http.MethodPatch)
	router.Handle("/posts/{id}", owned(s.HandleDeletePost())).Methods(http.MethodDelete)
	router.Handle("/posts/{id}/likePost", protect(s.HandleLikePost())).Methods(http.MethodPatch)
	router.Handle("/posts/{id}/comments", protect(s.HandleAddComment())).Methods(http.MethodPost)
	router.Handle("/posts/{id}/comments/{commentId}", protect(s.HandleRemoveComment())).Methods(http.MethodDelete)

	// Auth
	router.HandleFunc("/auth/register", s.HandleRegister()).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", s.HandleLogin()).Methods(http.MethodPost)
	router.Handle("/auth/me", protect(s.HandleMe())).Methods(http.MethodGet)

	// Admin
	router.Handle("/admin/stats", admin(s.HandleAdminStats())).Methods(http.MethodGet)
	router.Handle("/admin/users", admin(s.HandleAdminUsers())).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessage(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return middleware.CORSMiddleware(middleware.DefaultCORSConfig(s.Config.AllowedOrigins))(router)
}
