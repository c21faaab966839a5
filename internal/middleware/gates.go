package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"memories/internal/auth"
	"memories/internal/database"
	"memories/internal/utils"

	"github.com/gorilla/mux"
)

// OwnerLookup resolves the creator of a post.
type OwnerLookup interface {
	CreatorOf(ctx context.Context, postID string) (string, error)
}

// Authenticated validates the bearer token and attaches the caller's
// identity to the request context.
func Authenticated(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := auth.ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrTokenMissing) {
					utils.WriteError(w, utils.NewUnauthorizedError("No auth header provided"))
				} else {
					utils.WriteError(w, utils.NewUnauthorizedError("Invalid authorization format"))
				}
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				log.Printf("Token rejected: %v", err)
				utils.WriteError(w, utils.NewAppError(utils.ErrInvalidToken, "Invalid or expired token", err))
				return
			}

			ctx := auth.WithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly requires an authenticated admin. It must run after Authenticated.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			utils.WriteMessage(w, http.StatusUnauthorized, "No auth header provided")
			return
		}
		if !id.IsAdmin() {
			utils.WriteMessage(w, http.StatusForbidden, "Access denied. Admin role required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OwnerOrAdmin lets the request through when the caller created the post in
// route variable "id" or is an admin. The post is always loaded, so a missing
// post is 404 for everyone, and a missing or malformed id never skips the
// check.
func OwnerOrAdmin(posts OwnerLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				utils.WriteMessage(w, http.StatusUnauthorized, "No auth header provided")
				return
			}

			postID := mux.Vars(r)["id"]
			if !database.ValidID(postID) {
				utils.WriteMessage(w, http.StatusNotFound, "Post not found")
				return
			}

			creator, err := posts.CreatorOf(r.Context(), postID)
			if err != nil {
				utils.WriteError(w, err)
				return
			}

			if creator != id.UserID && !id.IsAdmin() {
				utils.WriteMessage(w, http.StatusForbidden, "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
