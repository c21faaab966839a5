package handlers

import (
	"log"
	"net/http"

	"memories/internal/api"
	"memories/internal/utils"
)

// HandleRegister handles requests to register a new user
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Normalize()
		if err := api.Validate(&req); err != nil {
			utils.WriteError(w, err)
			return
		}

		user, token, err := s.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		utils.WriteJSON(w, http.StatusCreated, api.AuthResponse{Token: token, User: api.NewUserResponse(user)})
	}
}

// HandleLogin handles requests to log in a user
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Normalize()
		if err := api.Validate(&req); err != nil {
			utils.WriteError(w, err)
			return
		}

		user, token, err := s.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrInvalidCredentials) {
				log.Printf("Failed login attempt")
			}
			utils.WriteError(w, err)
			return
		}

		utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Token: token, User: api.NewUserResponse(user)})
	}
}

// HandleMe restores the session of the token's user.
func (s *Server) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.Auth.Me(r.Context(), caller(r))
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, api.NewUserResponse(user))
	}
}
