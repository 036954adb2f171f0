// Package feed streams processed transcripts and proposal decisions to
// websocket subscribers.
package feed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/metrics"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/transcript"
)

const writeWait = 5 * time.Second

// Hub manages WebSocket connections. Run owns the client set; everything
// else talks to it through channels.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan transcript.FeedMessage
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	upgrader   websocket.Upgrader
	metrics    *metrics.Metrics

	mu    sync.RWMutex
	count int
}

// NewHub creates a hub. A nil m uses metrics.DefaultMetrics.
func NewHub(m *metrics.Metrics) *Hub {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan transcript.FeedMessage, 100),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // the assistant UI is served from another origin
			},
		},
		metrics: m,
	}
}

// Run dispatches until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				h.drop(conn)
			}
			return nil

		case conn := <-h.register:
			h.clients[conn] = true
			h.setCount(len(h.clients))
			h.metrics.RecordFeedSubscriber(true)
			log.Info().Int("subscribers", len(h.clients)).Msg("Feed subscriber connected")

		case conn := <-h.unregister:
			if h.clients[conn] {
				h.drop(conn)
				log.Info().Int("subscribers", len(h.clients)).Msg("Feed subscriber disconnected")
			}

		case msg := <-h.broadcast:
			for conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					log.Warn().Err(err).Msg("Feed write failed, dropping subscriber")
					h.drop(conn)
				}
			}
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	delete(h.clients, conn)
	_ = conn.Close()
	h.setCount(len(h.clients))
	h.metrics.RecordFeedSubscriber(false)
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Broadcast queues msg for every subscriber. It never blocks the caller;
// when the queue is full the message is dropped.
func (h *Hub) Broadcast(msg transcript.FeedMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("type", msg.Type).Msg("Feed queue full, dropping message")
	}
}

// ServeHTTP upgrades the request and subscribes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		_ = conn.Close()
		return
	}

	// Keep connection alive, handle disconnects
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
