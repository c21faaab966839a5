package handlers

import (
	"log"
	"net/http"

	"memories/internal/utils"
	"memories/internal/websocket"

	ws "github.com/gorilla/websocket"
)

// HandleWebSocket upgrades an authenticated request to the live activity
// feed. Browsers cannot set headers on a websocket handshake, so the token
// comes from the "token" query parameter here and nowhere else.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	upgrader := ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if s.Hub == nil {
			utils.WriteMessage(w, http.StatusServiceUnavailable, "Live feed unavailable")
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			utils.WriteMessage(w, http.StatusUnauthorized, "No auth token provided")
			return
		}

		claims, err := s.Tokens.Verify(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: %v", err)
			utils.WriteMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader has already written the error response
			log.Printf("WebSocket upgrade failed for User %s: %v", claims.UserID, err)
			return
		}

		client := websocket.NewClient(s.Hub, claims.UserID, conn)
		if !s.Hub.Add(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

// checkOrigin applies the CORS origin list to websocket handshakes.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.Config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
