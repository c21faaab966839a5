package websocket

import (
	"context"
	"log"
	"sync"
)

// Hub maintains the set of active clients and broadcasts activity events.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[string]map[*Client]bool

	// Outbound events waiting to be fanned out.
	broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's processing loop. It returns when ctx is done, after
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	log.Println("WebSocket Hub started.")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Println("WebSocket Hub stopped.")
			return

		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			log.Printf("WebSocket Client registered for User %s. Total connections for user: %d", client.UserID, len(h.Clients[client.UserID]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					close(client.Send)
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
					}
					log.Printf("WebSocket Client unregistered for User %s. Remaining connections: %d", client.UserID, len(userClients))
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, userClients := range h.Clients {
				for client := range userClients {
					select {
					case client.Send <- message:
					default:
						log.Printf("Broadcast send buffer full for client of User %s", client.UserID)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues message for every connected client. It never blocks; when
// the hub is backed up the message is dropped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("WebSocket Hub broadcast queue full, dropping message")
	}
}

// Add registers c. It reports false when the hub has already stopped.
func (h *Hub) Add(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// unregister hands c back to the hub unless the hub has already stopped.
func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// ConnectionCount is the number of open client connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, userClients := range h.Clients {
		n += len(userClients)
	}
	return n
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, userClients := range h.Clients {
		for client := range userClients {
			close(client.Send)
		}
		delete(h.Clients, userID)
	}
}
