package websocket

import (
	"encoding/json"

	"github.com/isdelr/storefront/internal/models"
	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and broadcasts catalog changes
// to them. All state is owned by the Run loop.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Feed client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Feed client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it rather than block the hub.
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Add registers a client. It reports false once the hub has stopped.
func (h *Hub) Add(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Stop ends the Run loop and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues a product event for all clients. Events are dropped when
// the hub is saturated or stopped.
func (h *Hub) Publish(event models.ProductEvent) {
	msg, err := json.Marshal(Message{Action: event.Action, Payload: event})
	if err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("Failed to encode product event")
		return
	}
	select {
	case <-h.done:
	case h.broadcast <- msg:
	default:
		log.Warn().Str("action", event.Action).Msg("Feed backlog full, dropping event")
	}
}
