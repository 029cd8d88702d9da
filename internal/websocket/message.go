package websocket

import "github.com/isdelr/storefront/internal/models"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string              `json:"action"`
	Payload models.ProductEvent `json:"payload"`
}
