package handlers

import (
	"net/http"

	"memories/internal/api"
	"memories/internal/utils"

	"github.com/gorilla/mux"
)

// HandleAddComment prepends a comment by the caller.
func (s *Server) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.CommentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Normalize()
		if err := api.Validate(&req); err != nil {
			utils.WriteError(w, err)
			return
		}

		post, err := s.Posts.AddComment(r.Context(), caller(r), mux.Vars(r)["id"], req.Text)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, s.presentPost(r.Context(), post))
	}
}

// HandleRemoveComment deletes a comment; only its author or an admin may.
func (s *Server) HandleRemoveComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		post, err := s.Posts.RemoveComment(r.Context(), caller(r), vars["id"], vars["commentId"])
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, s.presentPost(r.Context(), post))
	}
}
