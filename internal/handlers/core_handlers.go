package handlers

import (
	"log"
	"net/http"
	"time"

	"memories/internal/api"
	"memories/internal/utils"
)

// HandleRoot answers the bare service URL.
func (s *Server) HandleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Memories API is running!"})
	}
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := api.HealthResponse{
			Status:     "healthy",
			ServerTime: time.Now().UTC(),
		}

		if err := s.Store.Ping(r.Context()); err != nil {
			log.Printf("Health check: store ping failed: %v", err)
			resp.Status = "unhealthy"
			utils.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		if stats, err := s.Posts.Stats(r.Context()); err == nil {
			resp.PostCount = stats.TotalPosts
		} else {
			log.Printf("Health check: failed to count posts: %v", err)
		}

		if s.Engine != nil {
			if counts, err := s.Engine.Counts(); err == nil {
				resp.Activity = counts
			} else {
				log.Printf("Health check: %v", err)
			}
		}
		if s.Metrics != nil {
			resp.Uptime = s.Metrics.Uptime().Seconds()
		}
		if s.Hub != nil {
			resp.Clients = s.Hub.ConnectionCount()
		}

		utils.WriteJSON(w, http.StatusOK, resp)
	}
}
