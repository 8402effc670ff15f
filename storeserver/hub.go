package storeserver

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub fans change frames out to subscribed sockets. A client subscribed
// with a team id only sees that team's rows; an empty team id is the
// unfiltered firehose the admin view uses.
type Hub struct {
	mu      sync.Mutex
	clients map[*hubClient]bool
}

type hubClient struct {
	teamID string
	send   chan ChangeFrame
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*hubClient]bool)}
}

// Broadcast queues one frame for every matching client. A client that
// cannot keep up is dropped rather than blocking the writer.
func (h *Hub) Broadcast(frame ChangeFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.teamID != "" && c.teamID != frame.Row.TeamID {
			continue
		}
		select {
		case c.send <- frame:
		default:
			log.Printf("⚠️ [HUB] Slow subscriber (team %q) dropped", c.teamID)
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) register(c *hubClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	if h.clients[c] {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

// Serve runs one websocket session until the peer hangs up. Reads are
// discarded; the feed is one-way.
func (h *Hub) Serve(conn *websocket.Conn) {
	client := &hubClient{
		teamID: conn.Query("team_id"),
		send:   make(chan ChangeFrame, 64),
	}
	h.register(client)
	defer h.unregister(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case frame, ok := <-client.send:
			if !ok {
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
