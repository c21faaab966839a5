package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"memories/internal/api"
	"memories/internal/auth"
	"memories/internal/config"
	"memories/internal/database"
	"memories/internal/engine"
	"memories/internal/loader"
	"memories/internal/models"
	"memories/internal/service"
	"memories/internal/utils"
	"memories/internal/websocket"
)

// Server holds all server dependencies
type Server struct {
	Store   database.Store
	Posts   *service.PostService
	Auth    *service.AuthService
	Tokens  *auth.TokenManager
	Engine  *engine.Engine
	Hub     *websocket.Hub
	Metrics *utils.MetricsCollector
	Config  *config.Config
}

// NewServer wires the services on top of store. The engine receives every
// post mutation.
func NewServer(
	cfg *config.Config,
	store database.Store,
	tokens *auth.TokenManager,
	eng *engine.Engine,
	hub *websocket.Hub,
	metrics *utils.MetricsCollector,
) *Server {
	var sink service.EventSink
	if eng != nil {
		sink = eng
	}
	return &Server{
		Store:   store,
		Posts:   service.NewPostService(store, sink, metrics, cfg.Server.PageSize),
		Auth:    service.NewAuthService(store, tokens, cfg.Auth, metrics),
		Tokens:  tokens,
		Engine:  eng,
		Hub:     hub,
		Metrics: metrics,
		Config:  cfg,
	}
}

// decodeJSON reads the request body into dst. Oversized bodies are 413,
// anything else unreadable is 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		utils.WriteMessage(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

// caller returns the identity attached by the Authenticated gate.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}

// resolveUsers loads the users referenced by posts through the request's
// loader.
func (s *Server) resolveUsers(ctx context.Context, posts ...*models.Post) map[string]*models.User {
	loaders := loader.For(ctx)
	if loaders == nil {
		loaders = loader.NewLoaders(s.Store)
	}
	return loaders.Users(ctx, api.ReferencedUserIDs(posts...))
}

func (s *Server) presentPost(ctx context.Context, post *models.Post) api.PostResponse {
	return api.NewPostResponse(post, s.resolveUsers(ctx, post))
}

func (s *Server) presentPosts(ctx context.Context, posts []*models.Post) []api.PostResponse {
	return api.NewPostResponses(posts, s.resolveUsers(ctx, posts...))
}
