// Package sse pushes pipeline events to connected dashboards over
// Server-Sent Events, one stream per tenant.
package sse

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Event is one SSE frame sent to a dashboard.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type client struct {
	tenantID uuid.UUID
	events   chan Event
}

// Service manages SSE connections and per-tenant broadcasting.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	log     *slog.Logger
}

func New(log *slog.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.tenantID] = append(s.clients[c.tenantID], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A client missing from the map already had its channel closed by
	// Close, so only close when this call actually removed it.
	found := false
	clients := s.clients[c.tenantID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.tenantID] = append(clients[:i], clients[i+1:]...)
			found = true
			break
		}
	}
	if len(s.clients[c.tenantID]) == 0 {
		delete(s.clients, c.tenantID)
	}

	if found {
		close(c.events)
	}
}

// Publish broadcasts an event to every dashboard of a tenant. Slow consumers
// drop frames rather than block the pipeline.
func (s *Service) Publish(tenantID uuid.UUID, event Event) {
	s.mu.RLock()
	clients := s.clients[tenantID]
	s.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full, frame dropped", "tenant_id", tenantID, "type", event.Type)
		}
	}
}

// Handler serves one SSE connection. Tenant resolution is injected so the
// route can sit behind whatever auth the API uses.
func (s *Service) Handler(getTenantID func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := getTenantID(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing tenant"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			tenantID: tenantID,
			events:   make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"tenantId": tenantID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event.Data)
				c.SSEvent(event.Type, string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close drops every connection, typically during shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
