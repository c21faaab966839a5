package handlers

import (
	"log"
	"net/http"

	"memories/internal/api"
	"memories/internal/utils"
)

// HandleAdminStats reports store totals and activity since start.
func (s *Server) HandleAdminStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Posts.Stats(r.Context())
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		resp := api.StatsResponse{Stats: *stats}
		if s.Engine != nil {
			if counts, err := s.Engine.Counts(); err == nil {
				resp.Activity = counts
			} else {
				log.Printf("Admin stats: %v", err)
			}
		}
		utils.WriteJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) HandleAdminUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.Auth.ListUsers(r.Context())
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		out := make([]api.UserResponse, 0, len(users))
		for _, u := range users {
			out = append(out, api.NewUserResponse(u))
		}
		utils.WriteJSON(w, http.StatusOK, out)
	}
}
