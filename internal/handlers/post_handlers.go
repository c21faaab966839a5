package handlers

import (
	"net/http"
	"strconv"

	"memories/internal/api"
	"memories/internal/models"
	"memories/internal/utils"

	"github.com/gorilla/mux"
)

// HandleListPosts serves GET /posts?page=&tag=&search=&creator=
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		filter := models.PostFilter{
			Tag:       q.Get("tag"),
			Search:    q.Get("search"),
			CreatorID: q.Get("creator"),
		}

		posts, total, page, err := s.Posts.List(r.Context(), filter, page)
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		utils.WriteJSON(w, http.StatusOK, api.PostPage{
			Posts:       s.presentPosts(r.Context(), posts),
			TotalPages:  api.TotalPages(total, s.Posts.PageSize()),
			CurrentPage: page,
		})
	}
}

// HandleSearchPosts serves GET /posts/search?q=&tag=
func (s *Server) HandleSearchPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		posts, err := s.Posts.Search(r.Context(), q.Get("q"), q.Get("tag"))
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, s.presentPosts(r.Context(), posts))
	}
}

func (s *Server) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := s.Posts.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, s.presentPost(r.Context(), post))
	}
}

func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, ok := decodePostRequest(w, r)
		if !ok {
			return
		}

		post, err := s.Posts.Create(r.Context(), caller(r), input)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusCreated, s.presentPost(r.Context(), post))
	}
}

func (s *Server) HandleUpdatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, ok := decodePostRequest(w, r)
		if !ok {
			return
		}

		post, err := s.Posts.Update(r.Context(), caller(r), mux.Vars(r)["id"], input)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, s.presentPost(r.Context(), post))
	}
}

func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Posts.Delete(r.Context(), caller(r), mux.Vars(r)["id"]); err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Post deleted successfully."})
	}
}

// HandleLikePost toggles the caller's like.
func (s *Server) HandleLikePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := s.Posts.ToggleLike(r.Context(), caller(r), mux.Vars(r)["id"])
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, s.presentPost(r.Context(), post))
	}
}

func decodePostRequest(w http.ResponseWriter, r *http.Request) (models.PostUpdate, bool) {
	var req api.PostRequest
	if !decodeJSON(w, r, &req) {
		return models.PostUpdate{}, false
	}
	req.Normalize()
	if err := api.Validate(&req); err != nil {
		utils.WriteError(w, err)
		return models.PostUpdate{}, false
	}
	return models.PostUpdate{
		Title:        req.Title,
		Message:      req.Message,
		Tags:         req.Tags,
		SelectedFile: req.SelectedFile,
	}, true
}
