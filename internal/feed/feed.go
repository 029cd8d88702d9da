// Package feed subscribes to the backend's product change stream.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/isdelr/storefront/internal/models"
	ws "github.com/isdelr/storefront/internal/websocket"
	"github.com/rs/zerolog/log"
)

// Path is where the backend serves the feed, relative to the API base URL.
const Path = "/ws/products"

// URL converts an http(s) API base URL into the feed's ws(s) address.
func URL(baseURL string) (string, error) {
	base := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + Path, nil
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + Path, nil
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
		return base + Path, nil
	default:
		return "", fmt.Errorf("unsupported base URL scheme: %q", baseURL)
	}
}

// Subscribe dials the feed and streams events until ctx ends or the
// connection drops. The returned channel is closed in both cases.
func Subscribe(ctx context.Context, baseURL string) (<-chan models.ProductEvent, error) {
	addr, err := URL(baseURL)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	events := make(chan models.ProductEvent)
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-stop:
		}
	}()

	go func() {
		defer close(events)
		defer close(stop)
		defer conn.Close()
		for {
			var msg ws.Message
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("url", addr).Msg("Product feed closed")
				}
				return
			}
			select {
			case events <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
