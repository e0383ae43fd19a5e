package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sakhike1/officeboard/internal/domain"
)

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub fans session events out to every open stream of a user.
type Hub struct {
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
	done      chan struct{}
	closeOnce sync.Once
}

type message struct {
	userID  string
	payload []byte
}

type subscription struct {
	userID string
	client Subscriber
}

// NewHub creates a Hub and starts its dispatch loop.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.userID]; !ok {
				h.clients[sub.userID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.userID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			h.drop(sub.userID, sub.client)
		case msg := <-h.broadcast:
			for c := range h.clients[msg.userID] {
				if err := c.Send(msg.payload); err != nil {
					c.Close()
					h.drop(msg.userID, c)
				}
			}
		case <-h.done:
			for _, clients := range h.clients {
				for c := range clients {
					c.Close()
				}
			}
			h.clients = nil
			return
		}
	}
}

func (h *Hub) drop(userID string, client Subscriber) {
	clients, ok := h.clients[userID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
}

// Register adds a client to the user's stream.
func (h *Hub) Register(userID string, client Subscriber) {
	select {
	case h.register <- subscription{userID: userID, client: client}:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(userID string, client Subscriber) {
	select {
	case h.unreg <- subscription{userID: userID, client: client}:
	case <-h.done:
	}
}

// Broadcast sends payload to all of the user's clients.
func (h *Hub) Broadcast(userID string, payload []byte) {
	select {
	case h.broadcast <- message{userID: userID, payload: payload}:
	case <-h.done:
	}
}

// Publish encodes a session event and broadcasts it to the event's user.
func (h *Hub) Publish(event domain.SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}
	h.Broadcast(event.UserID, payload)
	return nil
}

// Close stops the dispatch loop and closes every registered client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
