package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"resumekit/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	ConnectedType       = "CONNECTED"        // Sent once after the socket is registered
	DocumentSavedType   = "DOCUMENT_SAVED"   // A document summary was added to the user's list
	DocumentDeletedType = "DOCUMENT_DELETED" // A document was removed from the user's list
)

// WSMessage is the envelope pushed to clients.
type WSMessage struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id"`
	DocID   string          `json:"document_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

// Hub fans document change events out to every open session of the owning
// user. Rooms are keyed by user id, so one user's events never reach another.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
	done       chan struct{}
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every open connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			h.mu.Unlock()

			hello, _ := json.Marshal(WSMessage{Type: ConnectedType, UserID: client.UserID, SentAt: time.Now().UTC()})
			client.Send <- hello

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Rooms[client.UserID][client]; ok {
				delete(h.Rooms[client.UserID], client)
				close(client.Send)
				if len(h.Rooms[client.UserID]) == 0 {
					delete(h.Rooms, client.UserID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			// Copy the recipients so no I/O happens under the lock.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.UserID]))
			for client := range h.Rooms[msg.UserID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					h.drop(client)
				}
			}
		}
	}
}

// NotifyUser queues an event for userID's sessions. It never blocks: when the
// queue is full the event is dropped, since clients re-list on reconnect anyway.
func (h *Hub) NotifyUser(userID, eventType, docID string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Sugar.Errorf("Error marshalling %s payload for %s: %v", eventType, docID, err)
			return
		}
		raw = data
	}

	msg := WSMessage{Type: eventType, UserID: userID, DocID: docID, Payload: raw, SentAt: time.Now().UTC()}
	select {
	case h.Broadcast <- msg:
	default:
		logger.Sugar.Warnf("Notification queue full, dropping %s for user %s", eventType, userID)
	}
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// ClientCount reports how many sessions userID has open.
func (h *Hub) ClientCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[userID])
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Rooms[client.UserID][client]; ok {
		delete(h.Rooms[client.UserID], client)
		close(client.Send)
		if len(h.Rooms[client.UserID]) == 0 {
			delete(h.Rooms, client.UserID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.Rooms {
		for client := range clients {
			close(client.Send)
			client.Conn.Close()
		}
		delete(h.Rooms, userID)
	}
}
