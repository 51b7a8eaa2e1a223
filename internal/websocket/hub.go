// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// Message types sent to dashboards.
const (
	MessageTypeContactCreated   = "contact.created"
	MessageTypePostCreated      = "post.created"
	MessageTypePaymentCompleted = "payment.completed"
	MessageTypeOutboxUpdated    = "outbox.updated"
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
)

// Message is one websocket frame.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. Call RunWithContext to start it.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext processes registrations and broadcasts until ctx is done,
// then closes every client and returns ctx.Err().
//
// Shutdown is checked first and lifecycle events before broadcasts, so a
// client registered before a broadcast always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error { return h.RunWithContext(ctx) }

// String implements fmt.Stringer for suture logs.
func (h *Hub) String() string { return "websocket-hub" }

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Int("total_clients", n).Str("actor", client.actor).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	logging.Info().Int("total_clients", n).Msg("websocket client disconnected")
}

func (h *Hub) shutdown(ctx context.Context) {
	n := h.GetClientCount()
	h.closeAllClients()
	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", n).
		Msg("websocket hub stopped")
}

// sortedClients returns clients in ID order. Caller holds h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// broadcastToClients queues message for every client; clients whose queue
// is full are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
		logging.Warn().Int("dropped", len(toRemove)).Msg("dropped slow websocket clients")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastJSON queues an event without blocking.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{Type: messageType, Timestamp: time.Now().UTC(), Data: data}
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastContactCreated announces a new contact message.
func (h *Hub) BroadcastContactCreated(msg *models.ContactMessage) {
	h.BroadcastJSON(MessageTypeContactCreated, msg)
}

// BroadcastPostCreated announces a new post.
func (h *Hub) BroadcastPostCreated(post *models.Post) {
	h.BroadcastJSON(MessageTypePostCreated, post)
}

// PaymentCompletedData is the payload of payment.completed.
type PaymentCompletedData struct {
	EventID  string `json:"eventId"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// BroadcastPaymentCompleted announces a paid checkout.
func (h *Hub) BroadcastPaymentCompleted(data PaymentCompletedData) {
	h.BroadcastJSON(MessageTypePaymentCompleted, data)
}

// OutboxUpdatedData is the payload of outbox.updated. Bodies are omitted.
type OutboxUpdatedData struct {
	ID        string              `json:"id"`
	Kind      string              `json:"kind"`
	Status    models.OutboxStatus `json:"status"`
	Attempts  int                 `json:"attempts"`
	LastError string              `json:"lastError,omitempty"`
}

// BroadcastOutboxUpdated announces an outbox state change.
func (h *Hub) BroadcastOutboxUpdated(job models.OutboxJob) {
	h.BroadcastJSON(MessageTypeOutboxUpdated, OutboxUpdatedData{
		ID:        job.ID,
		Kind:      job.Kind,
		Status:    job.Status,
		Attempts:  job.Attempts,
		LastError: job.LastError,
	})
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
