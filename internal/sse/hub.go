package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/smartfridge-backend/internal/logger"
)

type Event string

const (
	EventNotificationCreated Event = "NotificationCreated"
	EventStatusUpdated       Event = "StatusUpdated"
)

type Message struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

type Client struct {
	ID       uuid.UUID
	Outbound chan Message
	done     chan struct{}
}

// Hub fans pipeline events out to connected dashboard clients.
type Hub struct {
	mu      sync.RWMutex
	log     *logger.Logger
	clients map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log.With("component", "SSEHub"),
		clients: make(map[*Client]bool),
	}
}

func (hub *Hub) NewClient() *Client {
	client := &Client{
		ID:       uuid.New(),
		Outbound: make(chan Message, 10),
		done:     make(chan struct{}),
	}
	hub.mu.Lock()
	hub.clients[client] = true
	hub.mu.Unlock()
	hub.log.Debug("SSE client connected", "clientID", client.ID)
	return client
}

func (hub *Hub) Broadcast(msg Message) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for c := range hub.clients {
		select {
		case c.Outbound <- msg:
		default:
			hub.log.Warn("Dropping SSE message; outbound buffer full", "clientID", c.ID)
		}
	}
}

func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			hub.log.Debug("SSE client context done", "clientID", client.ID, "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			jsonBytes, err := json.Marshal(msg)
			if err != nil {
				hub.log.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: message\ndata: %s\n\n", string(jsonBytes))
			flusher.Flush()
		}
	}
}

func (hub *Hub) CloseClient(client *Client) {
	hub.mu.Lock()
	delete(hub.clients, client)
	hub.mu.Unlock()
	close(client.done)
	close(client.Outbound)
}
